package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmkrr/dupfind/pkg/engine"
	"github.com/dmkrr/dupfind/pkg/expression"
	"github.com/dmkrr/dupfind/pkg/logger"
)

// largeOutputGroups is the listing size beyond which an interactive run
// asks for --no-warn before dumping everything to the terminal.
const largeOutputGroups = 25

var (
	scanRecursive   bool
	scanQuiet       bool
	scanJSON        bool
	scanNoWarn      bool
	scanTrustDigest bool
	scanMinSize     int64
	scanWorkers     int
	scanPrefixBytes int64
	scanExcludes    []string
	scanFilters     []string
)

func ScanCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "scan [DIRECTORY]",
		Short: "Scan a directory for duplicate files",
		Long: `Scan a directory and report groups of files with byte-identical contents.
Hard links to the same inode are reported as aliases, not duplicates, and
symbolic links are listed separately without content comparison.`,

		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	command.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "Include files in subdirectories")
	command.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Disable all non-essential output")
	command.Flags().BoolVar(&scanJSON, "json", false, "Emit the report as JSON on stdout")
	command.Flags().BoolVarP(&scanNoWarn, "no-warn", "y", false, "Disable large-output warnings")
	command.Flags().BoolVar(&scanTrustDigest, "trust-digest", false,
		"Accept full-content digest equality without byte-for-byte confirmation (faster, not exact)")
	command.Flags().Int64Var(&scanMinSize, "min-size", 0, "Minimum file size in bytes to consider")
	command.Flags().IntVar(&scanWorkers, "workers", 0, "Comparison workers (0 = number of CPUs)")
	command.Flags().Int64Var(&scanPrefixBytes, "prefix-bytes", 0, "Bytes hashed by the first-pass fingerprint")
	command.Flags().StringSliceVar(&scanExcludes, "exclude", nil, "Basenames to skip during traversal")
	command.Flags().StringSliceVar(&scanFilters, "filter", nil,
		"Expression a file must match to be compared, e.g. 'Size > 4096 && Ext == \".iso\"'")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		if scanQuiet && FlagLogLevel > 0 {
			return fmt.Errorf("incompatible flags: cannot be quiet and verbose")
		}

		initCore()

		if scanQuiet {
			logger.SetOutput(io.Discard)
		}

		log := logger.GetLogger("scan")

		filters, err := expression.Compile(scanFilters)
		if err != nil {
			return err
		}

		opts := engine.Options{
			Recursive:   scanRecursive,
			Workers:     cfg.Scan.Workers,
			PrefixBytes: cfg.Scan.PrefixBytes,
			MinSize:     cfg.Scan.MinSize,
			Excludes:    cfg.Scan.Excludes,
			TrustDigest: cfg.Scan.TrustDigest,
			Filters:     filters,
		}

		// flags override config file values
		if cmd.Flags().Changed("workers") {
			opts.Workers = scanWorkers
		}
		if cmd.Flags().Changed("prefix-bytes") {
			opts.PrefixBytes = scanPrefixBytes
		}
		if cmd.Flags().Changed("min-size") {
			opts.MinSize = scanMinSize
		}
		if cmd.Flags().Changed("trust-digest") {
			opts.TrustDigest = scanTrustDigest
		}
		if len(scanExcludes) > 0 {
			opts.Excludes = append(opts.Excludes, scanExcludes...)
		}

		if FlagLogLevel > 0 {
			opts.Observer = &logObserver{log: log}
		}

		report, err := engine.New(opts).Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		renderReport(os.Stdout, report)
		return nil
	}

	return command
}

// renderReport prints the human-readable listing: duplicate groups, then
// hard links, symlinks, an errors section, and the summary line.
func renderReport(w io.Writer, report *engine.Report) {
	listGroups := true
	if !scanNoWarn && len(report.Groups) > largeOutputGroups && stdoutIsTerminal() {
		fmt.Fprintf(w, "Found %d duplicate groups; re-run with --no-warn (or --json) to list them all.\n",
			len(report.Groups))
		listGroups = false
	}

	if listGroups {
		for _, group := range report.Groups {
			fmt.Fprintf(w, "%d files x %s:\n", len(group.Paths), humanize.IBytes(uint64(group.Size)))
			for _, path := range group.Paths {
				fmt.Fprintf(w, "  %s\n", path)
			}
		}

		for _, link := range report.HardLinks {
			fmt.Fprintf(w, "hard links (inode %d:%d):\n", link.Device, link.Inode)
			for _, path := range link.Paths {
				fmt.Fprintf(w, "  %s\n", path)
			}
		}

		for _, symlink := range report.Symlinks {
			fmt.Fprintf(w, "symlink: %s -> %s\n", symlink.Path, symlink.Target)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "errors encountered:\n")
		for _, scanErr := range report.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", scanErr.Op, scanErr.Path, scanErr.Message)
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "Scanned %d files (%s read) in %s: %d duplicate groups, %d redundant files, %s reclaimable\n",
		s.FilesScanned, humanize.IBytes(uint64(s.BytesScanned)), s.Elapsed.Round(time.Millisecond),
		len(report.Groups), s.DuplicateFiles, humanize.IBytes(uint64(s.ReclaimableBytes)))
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// logObserver renders engine progress checkpoints through the logger.
type logObserver struct {
	log *logrus.Entry
}

func (o *logObserver) FileProcessed(p engine.Progress, path string) {
	o.log.Tracef("Fingerprinted %q (%d files, %s read, %d buckets remaining)",
		path, p.FilesProcessed, humanize.IBytes(uint64(p.BytesScanned)), p.BucketsRemaining)
}

func (o *logObserver) BucketResolved(p engine.Progress, size int64) {
	o.log.Debugf("Resolved bucket of size %s, %d buckets remaining",
		humanize.IBytes(uint64(size)), p.BucketsRemaining)
}
