package executors

import "github.com/farm-framework/forge/internal/core/domain"

// configEnv builds the subprocess environment overlay from a task config.
// Everything a tool invocation may depend on comes from the config so the
// cache key covers it.
func configEnv(cfg domain.TaskConfig, extra ...string) []string {
	env := make([]string, 0, len(cfg.Settings)+len(extra)+1)
	env = append(env, "FORGE_ENV="+cfg.Environment)
	for k, v := range cfg.Settings {
		env = append(env, k+"="+v)
	}
	env = append(env, extra...)
	return env
}
