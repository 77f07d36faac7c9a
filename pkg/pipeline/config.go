package pipeline

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadConfig reads pipeline options from a TOML file. Fields absent
// from the file keep their zero value and pick up defaults during
// validation, so a config file only needs to state what it changes.
func LoadConfig(path string) (Options, error) {
	var opts Options
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, fmt.Errorf("config file %s not found", path)
		}
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return opts, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}
