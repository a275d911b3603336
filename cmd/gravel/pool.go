package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lanrat/gravel/slab"
)

func newPoolCmd(a *app) *cobra.Command {
	var (
		goroutines int
		rounds     int
		hold       int
	)
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Run a synthetic workload against a slab pool and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config.poolConfig(a.logger)
			if err != nil {
				return err
			}
			pool := slab.New(cfg)
			maintained := make(chan error, 1)
			go func() { maintained <- pool.Run(cmd.Context()) }()

			var g errgroup.Group
			for w := 0; w < goroutines; w++ {
				w := w
				g.Go(func() error {
					return churn(pool, w, rounds, hold)
				})
			}
			err = g.Wait()
			pool.Maintain()
			pool.Close()
			if merr := <-maintained; err == nil {
				err = merr
			}
			if err != nil {
				return err
			}
			a.logger.Info("pool workload done",
				zap.Int("goroutines", goroutines),
				zap.Int("rounds", rounds))
			_, err = fmt.Fprintln(a.out, pool.Stats().String())
			return err
		},
	}
	cmd.Flags().IntVarP(&goroutines, "goroutines", "g", 8, "concurrent workers")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 1000, "rounds per worker")
	cmd.Flags().IntVar(&hold, "hold", 4, "byte slices held per round")
	return cmd
}

// churn withdraws and returns buffers of every kind, checking that no other
// holder writes through them.
func churn(pool *slab.Pool, id, rounds, hold int) error {
	held := make([][]byte, hold)
	for r := 0; r < rounds; r++ {
		mark := byte(id + r)
		for i := range held {
			held[i] = pool.GetBytes()
			held[i][1] = mark
		}
		longs := pool.GetLongs()
		longs[0] = int64(r)
		for i, b := range held {
			if b[1] != mark {
				return errors.Newf("worker %d: slice %d changed while held", id, i)
			}
			pool.PutBytes(b)
		}
		pool.PutLongs(longs)
		if r%100 == 0 {
			s := pool.GetSlab()
			s.Slice(s.Len() - 1)[1] = mark
			pool.PutSlab(s)
		}
	}
	return nil
}
