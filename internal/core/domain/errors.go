package domain

import "go.trai.ch/zerr"

var (
	// ErrNoTargetsSpecified is returned when a build is requested without targets.
	ErrNoTargetsSpecified = zerr.New("no build targets specified")

	// ErrUnknownTarget is returned for a target name outside the known set.
	ErrUnknownTarget = zerr.New("unknown build target")

	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the plan.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPlanValidation is returned when a generated plan violates stage ordering.
	ErrPlanValidation = zerr.New("plan validation failed")

	// ErrPreBuild is returned when a pre-build step fails. Fatal: no stage runs.
	ErrPreBuild = zerr.New("pre-build phase failed")

	// ErrExecutorFailed is returned when a task executor fails. It terminates
	// the containing stage but leaves earlier cached stage results intact.
	ErrExecutorFailed = zerr.New("task executor failed")

	// ErrUnknownExecutor is returned when a task names an executor kind that
	// has no registered implementation.
	ErrUnknownExecutor = zerr.New("no executor registered for kind")

	// ErrPostBuild wraps post-build step failures. Reported as warnings on an
	// otherwise successful result, never as a hard failure.
	ErrPostBuild = zerr.New("post-build phase failed")

	// ErrBuildFailed is the sentinel the CLI maps to a non-zero exit code.
	// The structured failure detail lives in the BuildResult, not here.
	ErrBuildFailed = zerr.New("build failed")
)
