package config

import (
	"github.com/kballard/go-shellquote"
	"github.com/teranos/callgen/errors"
)

var knownLanguages = map[string]bool{"go": true, "markdown": true}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Generate.Output == "" {
		return errors.New("generate.output cannot be empty")
	}
	if len(c.Generate.Languages) == 0 {
		return errors.New("generate.languages must name at least one emitter")
	}
	for _, lang := range c.Generate.Languages {
		if !knownLanguages[lang] {
			return errors.WithHint(
				errors.Newf("generate.languages: unknown language %q", lang),
				"supported languages: go, markdown")
		}
	}
	if c.Generate.Parallelism < 0 {
		return errors.Newf("generate.parallelism must be >= 0, got %d", c.Generate.Parallelism)
	}
	if _, err := c.PostHookArgs(); err != nil {
		return err
	}
	if c.Run.MemoryLimitPages == 0 || c.Run.MemoryLimitPages > 65536 {
		return errors.Newf("run.memory_limit_pages must be in 1..65536, got %d", c.Run.MemoryLimitPages)
	}
	if c.Run.TimeoutSeconds < 0 {
		return errors.Newf("run.timeout_seconds must be >= 0, got %d", c.Run.TimeoutSeconds)
	}
	return nil
}

// PostHookArgs splits generate.post_hook into argv using shell quoting
// rules. A blank hook yields nil.
func (c *Config) PostHookArgs() ([]string, error) {
	if c.Generate.PostHook == "" {
		return nil, nil
	}
	args, err := shellquote.Split(c.Generate.PostHook)
	if err != nil {
		return nil, errors.Wrapf(err, "generate.post_hook %q", c.Generate.PostHook)
	}
	return args, nil
}
