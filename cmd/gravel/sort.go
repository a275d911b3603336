package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lanrat/gravel"
)

func newSortCmd(a *app) *cobra.Command {
	var (
		cf       caseFlag
		desc     bool
		parallel int
		top      int
		unique   bool
	)
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort lines read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.readLines()
			if err != nil {
				return err
			}
			cfg := a.config.sorterConfig(a.logger)
			if cmd.Flags().Changed("parallel") {
				cfg.NumWorkers = parallel
			}
			sorter := gravel.NewSorter(cfg)
			c := gravel.Strings(lines, cf.policy(), desc)

			var p []int
			switch {
			case unique:
				if p, err = sorter.SortMap(c); err != nil {
					return err
				}
				p = gravel.Distinct(p, c)
				if top > 0 && top < len(p) {
					p = p[:top]
				}
			case top > 0:
				if p, err = sorter.SortMapAndCrop(c, top); err != nil {
					return err
				}
			default:
				if err = sorter.Sort(c); err != nil {
					return err
				}
				p = make([]int, len(lines))
				for i := range p {
					p[i] = i
				}
			}
			a.logger.Debug("sorted lines",
				zap.Int("in", len(lines)),
				zap.Int("out", len(p)),
				zap.Stringer("case", cf.c))
			return a.writeLines(lines, p)
		},
	}
	addOrderFlags(cmd, &cf, &desc)
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "number of sorting goroutines")
	cmd.Flags().IntVarP(&top, "top", "k", 0, "only output the first k lines")
	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "output one line of every run of equal lines")
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	var (
		cf   caseFlag
		desc bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the rank of every input line, in input order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.readLines()
			if err != nil {
				return err
			}
			c := gravel.Strings(lines, cf.policy(), desc)
			p, err := gravel.NewSorter(a.config.sorterConfig(a.logger)).SortMap(c)
			if err != nil {
				return err
			}
			ranks := gravel.Rank(p, c)
			w := bufio.NewWriter(a.out)
			for i, line := range lines {
				if _, err := fmt.Fprintf(w, "%d\t%s\n", ranks[i], line); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	addOrderFlags(cmd, &cf, &desc)
	return cmd
}
