package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjuarezm/Arborist/train"
)

type trainCmdConfig struct {
	*rootCmdConfig
	input inputConfig

	output          string
	codec           string
	nTree           int
	trainBlock      int
	minNode         int
	sampleSize      int
	withReplacement bool
	workers         int
	seed            int64
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a random forest from a set of data",
		Long:  `Grow a forest of regression or classification trees to predict a response column from a dataset.`,
		Run: func(cmd *cobra.Command, args []string) {
			res, err := config.run(cmd.Context())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			codec, err := parseCodec(config.codec)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			if err := writeForest(config.output, res.forest, codec); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
		},
	}
	config.input.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&config.output, "output", "o", "", "path to write the trained forest to (defaults to STDOUT)")
	cmd.PersistentFlags().StringVar(&config.codec, "codec", "gob", "forest wire format to write: gob or json")
	cmd.PersistentFlags().IntVar(&config.nTree, "ntree", 500, "number of trees to grow")
	cmd.PersistentFlags().IntVar(&config.trainBlock, "train-block", 0, "number of trees grown per consume pass (defaults to ntree: a single block)")
	cmd.PersistentFlags().IntVar(&config.minNode, "min-node", 1, "minimum number of samples a node must hold to be split")
	cmd.PersistentFlags().IntVar(&config.sampleSize, "sample-size", 0, "row sample size per tree when sampling without replacement (defaults to the full row count)")
	cmd.PersistentFlags().BoolVar(&config.withReplacement, "with-replacement", true, "bag rows with replacement (bootstrap); false samples sample-size rows without replacement")
	cmd.PersistentFlags().IntVar(&config.workers, "workers", 0, "goroutines growing trees concurrently (0 or less means 1)")
	cmd.PersistentFlags().Int64Var(&config.seed, "seed", 0, "random seed (defaults to the current time for a non-reproducible run)")
	return cmd
}

func (tcc *trainCmdConfig) run(ctx context.Context) (*forestResult, error) {
	if err := tcc.Validate(); err != nil {
		return nil, err
	}
	cols, err := tcc.input.columns()
	if err != nil {
		return nil, err
	}
	tcc.Logf("Reading dataset against %d declared columns...", len(cols))
	m, err := tcc.input.loadMatrix(ctx, cols, tcc.Logf)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %v", err)
	}
	tcc.Logf("Loaded %d rows", m.NRow)
	pt, err := m.Table()
	if err != nil {
		return nil, err
	}
	resp, err := trainResponse(m)
	if err != nil {
		return nil, err
	}
	workers := tcc.workers
	if workers <= 0 {
		workers = 1
	}
	rng := rand.New(rand.NewSource(tcc.seedOrNow()))
	driver, err := train.NewDriver(pt, resp, train.Config{
		NTree:           tcc.nTree,
		TrainBlock:      tcc.trainBlock,
		MinNode:         tcc.minNode,
		WithReplacement: tcc.withReplacement,
		SampleSize:      tcc.sampleSize,
		Workers:         workers,
	}, rng)
	if err != nil {
		return nil, err
	}
	tcc.Logf("Growing %d trees over %d rows and %d predictors...", tcc.nTree, pt.NRow(), pt.NPred())
	f, err := driver.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("training: %v", err)
	}
	tcc.Logf("Done")
	return &forestResult{forest: f, matrix: m, table: pt, driver: driver}, nil
}

func (tcc *trainCmdConfig) Validate() error {
	if tcc.input.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.input.responseName == "" {
		return fmt.Errorf("required response flag was not set")
	}
	return nil
}

func (tcc *trainCmdConfig) seedOrNow() int64 {
	if tcc.seed != 0 {
		return tcc.seed
	}
	return time.Now().UnixNano()
}
