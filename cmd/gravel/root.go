package main

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lanrat/gravel/order"
)

const maxLine = 16 << 20

// app is the state shared by all subcommands.
type app struct {
	in         io.Reader
	out        io.Writer
	configPath string
	verbose    bool

	config *fileConfig
	logger *zap.Logger
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}
	root := &cobra.Command{
		Use:           "gravel",
		Short:         "Sort, rank and search lines of text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newSortCmd(a),
		newRankCmd(a),
		newSearchCmd(a),
		newPoolCmd(a),
	)
	return root
}

func (a *app) setup() error {
	fc, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.config = fc
	if a.verbose {
		a.logger, err = zap.NewDevelopment()
	} else {
		a.logger, err = zap.NewProduction()
	}
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	return nil
}

// readLines reads every line of the input.
func (a *app) readLines() ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	return lines, nil
}

func (a *app) writeLines(lines []string, idx []int) error {
	w := bufio.NewWriter(a.out)
	for _, i := range idx {
		if _, err := w.WriteString(lines[i]); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// caseFlag is a pflag.Value holding an order.Case.
type caseFlag struct {
	c order.Case
}

var _ pflag.Value = (*caseFlag)(nil)

func (f *caseFlag) String() string { return f.c.String() }
func (f *caseFlag) Type() string   { return "case" }

func (f *caseFlag) Set(s string) error {
	c, err := order.ParseCase(s)
	if err != nil {
		return err
	}
	f.c = c
	return nil
}

// policy returns the case policy, loading the default normalization table
// when the policy needs one.
func (f *caseFlag) policy() order.Case {
	if f.c.NeedsNormTable() && order.LoadedNormTable() == nil {
		order.LoadNormTable(order.DefaultNormTable())
	}
	return f.c
}

func addOrderFlags(cmd *cobra.Command, cf *caseFlag, desc *bool) {
	cmd.Flags().Var(cf, "case", "case policy: matters, ignore, breaks-ties, norm, raw-breaks-ties")
	cmd.Flags().BoolVar(desc, "desc", false, "sort in descending order")
}
