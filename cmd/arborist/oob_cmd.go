package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjuarezm/Arborist/walker"
)

type oobCmdConfig struct {
	*trainCmdConfig
}

func oobCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &oobCmdConfig{trainCmdConfig: &trainCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "oob",
		Short: "Train a forest and report its out-of-bag error",
		Long:  `Grow a forest exactly like train does, then walk every row against the trees that did not see it in their bag and report the resulting error.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.runOOB(cmd.Context()); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
	config.input.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&config.output, "output", "o", "", "path to also write the trained forest to (optional)")
	cmd.PersistentFlags().StringVar(&config.codec, "codec", "gob", "forest wire format for --output: gob or json")
	cmd.PersistentFlags().IntVar(&config.nTree, "ntree", 500, "number of trees to grow")
	cmd.PersistentFlags().IntVar(&config.trainBlock, "train-block", 0, "number of trees grown per consume pass (defaults to ntree: a single block)")
	cmd.PersistentFlags().IntVar(&config.minNode, "min-node", 1, "minimum number of samples a node must hold to be split")
	cmd.PersistentFlags().IntVar(&config.sampleSize, "sample-size", 0, "row sample size per tree when sampling without replacement (defaults to the full row count)")
	cmd.PersistentFlags().BoolVar(&config.withReplacement, "with-replacement", true, "bag rows with replacement (bootstrap); false samples sample-size rows without replacement")
	cmd.PersistentFlags().IntVar(&config.workers, "workers", 0, "goroutines growing trees concurrently (0 or less means 1)")
	cmd.PersistentFlags().Int64Var(&config.seed, "seed", 0, "random seed (defaults to the current time for a non-reproducible run)")
	return cmd
}

func (occ *oobCmdConfig) runOOB(ctx context.Context) error {
	res, err := occ.run(ctx)
	if err != nil {
		return err
	}
	if occ.output != "" {
		codec, err := parseCodec(occ.codec)
		if err != nil {
			return err
		}
		if err := writeForest(occ.output, res.forest, codec); err != nil {
			return err
		}
	}
	w := walker.New(res.forest, res.table, res.driver.BagMap())
	if res.matrix.Ctg != nil {
		return occ.reportClassification(w, res)
	}
	return occ.reportRegression(w, res)
}

func (occ *oobCmdConfig) reportRegression(w *walker.Walker, res *forestResult) error {
	predicted := make([]float64, 0, res.matrix.NRow)
	truth := make([]float64, 0, res.matrix.NRow)
	skipped := 0
	for row := 0; row < res.matrix.NRow; row++ {
		mean, treesSeen, err := w.PredictRegression(row, true)
		if err != nil {
			return err
		}
		if treesSeen == 0 {
			skipped++
			continue
		}
		predicted = append(predicted, mean)
		truth = append(truth, res.matrix.Y[row])
	}
	if skipped > 0 {
		occ.Logf("%d of %d rows were in-bag for every tree and were excluded from the OOB estimate", skipped, res.matrix.NRow)
	}
	mse := walker.RegressionMSE(predicted, truth)
	fmt.Printf("OOB MSE over %d rows: %g\n", len(predicted), mse)
	return nil
}

func (occ *oobCmdConfig) reportClassification(w *walker.Walker, res *forestResult) error {
	cm := walker.NewConfusionMatrix(res.matrix.CtgWidth)
	skipped := 0
	for row := 0; row < res.matrix.NRow; row++ {
		_, vote, treesSeen, err := w.PredictClassification(row, true, res.matrix.CtgWidth)
		if err != nil {
			return err
		}
		if treesSeen == 0 {
			skipped++
			continue
		}
		cm.Observe(res.matrix.Ctg[row], vote)
	}
	if skipped > 0 {
		occ.Logf("%d of %d rows were in-bag for every tree and were excluded from the OOB estimate", skipped, res.matrix.NRow)
	}
	for ctg, name := range res.matrix.ResponseLevels {
		fmt.Printf("class %s error: %g\n", name, cm.ClassError(ctg))
	}
	return nil
}
