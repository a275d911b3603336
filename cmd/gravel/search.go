package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lanrat/gravel"
)

// errNotSorted is returned when search input is not sorted under the
// requested policy and direction.
var errNotSorted = errors.New("input is not sorted")

func newSearchCmd(a *app) *cobra.Command {
	var (
		cf                    caseFlag
		desc                  bool
		target                string
		hint                  int
		after, before, ge, le bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find a line in sorted input and print its index",
		Long: `Find a line in sorted input and print its index.

Without a mode flag any index of a line equal to the target is printed, or -1.
--after and --ge print insertion points, --before and --le the index before
one; they may print the input length or -1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.readLines()
			if err != nil {
				return err
			}
			policy := cf.policy()
			if !gravel.IsSorted(gravel.Strings(lines, policy, desc)) {
				return errNotSorted
			}
			f := gravel.FindString(lines, target, policy, desc)
			n := len(lines)
			hinted := cmd.Flags().Changed("hint")

			var i int
			switch {
			case after && hinted:
				i = gravel.FindIndexAfterFrom(f, 0, n, hint)
			case after:
				i = gravel.FindIndexAfter(f, 0, n)
			case ge && hinted:
				i = gravel.FindIndexEqualOrAfterFrom(f, 0, n, hint)
			case ge:
				i = gravel.FindIndexEqualOrAfter(f, 0, n)
			case before && hinted:
				i = gravel.FindIndexBeforeFrom(f, 0, n, hint)
			case before:
				i = gravel.FindIndexBefore(f, 0, n)
			case le && hinted:
				i = gravel.FindIndexEqualOrBeforeFrom(f, 0, n, hint)
			case le:
				i = gravel.FindIndexEqualOrBefore(f, 0, n)
			case hinted:
				i = gravel.FindIndexFrom(f, 0, n, hint)
			default:
				i = gravel.FindIndex(f, 0, n)
			}
			_, err = fmt.Fprintln(a.out, i)
			return err
		},
	}
	addOrderFlags(cmd, &cf, &desc)
	cmd.Flags().StringVarP(&target, "target", "t", "", "line to search for")
	cmd.Flags().IntVar(&hint, "hint", 0, "start the search at this index")
	cmd.Flags().BoolVar(&after, "after", false, "first index sorting after the target")
	cmd.Flags().BoolVar(&before, "before", false, "last index sorting before the target")
	cmd.Flags().BoolVar(&ge, "ge", false, "first index not sorting before the target")
	cmd.Flags().BoolVar(&le, "le", false, "last index not sorting after the target")
	_ = cmd.MarkFlagRequired("target")
	cmd.MarkFlagsMutuallyExclusive("after", "before", "ge", "le")
	return cmd
}
