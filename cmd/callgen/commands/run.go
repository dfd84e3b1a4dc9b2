package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/callgen/db"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
	"github.com/teranos/callgen/state"
	"github.com/teranos/callgen/wasmhost"
)

var (
	runInputFile string
	runStateDB   string
	runName      string
	runStats     bool
	runRaw       bool
)

// RunCmd calls one entry point of a wasm contract
var RunCmd = &cobra.Command{
	Use:   "run <contract.wasm> <entry> [input]",
	Short: "Call an entry point of a wasm contract",
	Long: `Call one entry point of a contract built for wasip1.

The contract's receiver is loaded from the state database before the call
and saved after it, unless the call aborted. Output is written to stdout
exactly as the contract produced it; JSON output gets a trailing newline
unless --raw is given.

Build contracts with:
  GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o message.wasm ./message

Examples:
  callgen run message.wasm method_b '{"my_string":"x","my_bool":true}'
  callgen run --state-db state.db message.wasm method_a --input-file in.json
  callgen run --stats --state-db state.db message.wasm method_a '{"my_string":"y"}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRun,
}

func init() {
	RunCmd.Flags().StringVarP(&runInputFile, "input-file", "i", "", "Read the call payload from a file")
	RunCmd.Flags().StringVar(&runStateDB, "state-db", "", "SQLite state database (default: run.state_db)")
	RunCmd.Flags().StringVar(&runName, "name", "", "Contract name in the state database (default: file name)")
	RunCmd.Flags().BoolVar(&runStats, "stats", false, "Print the contract's call statistics afterwards")
	RunCmd.Flags().BoolVar(&runRaw, "raw", false, "Never append a newline to the output")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	wasmPath, entry := args[0], args[1]

	input, err := readInput(args)
	if err != nil {
		return err
	}
	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return errors.Wrapf(err, "read contract %s", wasmPath)
	}

	dbPath := cfg.Run.StateDB
	if runStateDB != "" {
		dbPath = runStateDB
	}
	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return err
	}
	defer database.Close()
	store := state.NewSQLStore(database)

	name := runName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(wasmPath), filepath.Ext(wasmPath))
	}

	ctx := cmd.Context()
	if cfg.Run.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Run.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	rt, err := wasmhost.New(ctx, store, wasmhost.Options{MemoryLimitPages: cfg.Run.MemoryLimitPages})
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	contract, err := rt.Load(ctx, name, wasm)
	if err != nil {
		return err
	}

	start := time.Now()
	out, callErr := contract.Call(ctx, entry, input)
	outcome, errText := "ok", ""
	if callErr != nil {
		outcome, errText = "aborted", callErr.Error()
	}
	if err := store.RecordCall(ctx, state.CallRecord{
		ID:       uuid.NewString(),
		Contract: name,
		Entry:    entry,
		Outcome:  outcome,
		Error:    errText,
		Duration: time.Since(start),
	}); err != nil {
		logger.Warnw("Failed to record call", logger.FieldError, err)
	}
	if callErr != nil {
		if errors.Is(callErr, errors.EntryPointNotFound) {
			return errors.WithHintf(callErr, "entry points: %s", strings.Join(contract.Entries(), ", "))
		}
		return callErr
	}

	if err := writeOutput(cmd.OutOrStdout(), out, runRaw); err != nil {
		return err
	}

	if runStats {
		stats, err := store.Stats(ctx, name)
		if err != nil {
			return err
		}
		pterm.Info.Printf("%s: %d call(s), %d ok, %d aborted\n", name, stats.Total, stats.Succeeded, stats.Aborted)
	}
	return nil
}

// writeOutput writes a contract's output unchanged. JSON output gets a
// trailing newline unless raw is set; binary output never does.
func writeOutput(w io.Writer, out []byte, raw bool) error {
	if len(out) == 0 {
		return nil
	}
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(err, "write output")
	}
	if raw || bytes.HasSuffix(out, []byte("\n")) || !jsoniter.Valid(out) {
		return nil
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

func readInput(args []string) ([]byte, error) {
	switch {
	case runInputFile != "" && len(args) == 3:
		return nil, errors.New("give the input inline or with --input-file, not both")
	case runInputFile == "-":
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "read input from stdin")
	case runInputFile != "":
		data, err := os.ReadFile(runInputFile)
		if err != nil {
			return nil, errors.Wrapf(err, "read input %s", runInputFile)
		}
		return data, nil
	case len(args) == 3:
		return []byte(args[2]), nil
	}
	return nil, nil
}
