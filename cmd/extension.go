package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/etnz/dca/config"
)

// Environment passed to extensions, on top of the inherited one.
const (
	EnvProvider = "DCA_PROVIDER"
	EnvCSVDir   = "DCA_CSV_DIR"
	EnvCache    = "DCA_CACHE"
	EnvRaw      = "DCA_RAW"
)

// RunExtension attempts to find and execute an external dcasim-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(cfg *config.Config, raw bool, subcommand string, args []string) (bool, int) {
	name := "dcasim-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// global flags may have overridden the environment
	cmd.Env = append(os.Environ(),
		EnvProvider+"="+cfg.Provider,
		EnvCSVDir+"="+cfg.CSVDir,
		EnvCache+"="+cfg.Cache,
		EnvRaw+"="+strconv.FormatBool(raw),
	)

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
