package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/dataset/inputrow"
	"github.com/mjuarezm/Arborist/feature"
	"github.com/mjuarezm/Arborist/forest"
	"github.com/mjuarezm/Arborist/walker"
)

type predictCmdConfig struct {
	*rootCmdConfig
	input inputConfig

	forestInput    string
	codec          string
	interactive    bool
	undefinedValue string
}

type stdoutRequester string

func (r stdoutRequester) RequestValueFor(c feature.ColumnSpec) error {
	if c.Kind == feature.Factor {
		fmt.Printf("Please provide the sample's %s:\n(valid values are %v or %s if undefined)\n", c.Name, c.Levels, string(r))
		return nil
	}
	fmt.Printf("Please provide the sample's %s:\n(valid values are real numbers or %s if undefined)\n", c.Name, string(r))
	return nil
}

func (r stdoutRequester) RejectValueFor(c feature.ColumnSpec, value string) error {
	if c.Kind == feature.Factor {
		fmt.Printf("%q is not a valid value for %s. Please provide one of %v or %s if undefined.\n", value, c.Name, c.Levels, string(r))
		return nil
	}
	fmt.Printf("%q is not a valid value for %s. Please provide a real number or %s if undefined.\n", value, c.Name, string(r))
	return nil
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the response for rows using a trained forest",
		Long:  `Load a trained forest and use it to predict the response column for every row of a batch, or for a single sample entered interactively.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.run(cmd.Context()); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
	config.input.addFlags(cmd)
	cmd.PersistentFlags().StringVarP(&config.forestInput, "forest", "f", "", "path to the trained forest to predict with (required)")
	cmd.PersistentFlags().StringVar(&config.codec, "codec", "gob", "forest wire format --forest was written with: gob or json")
	cmd.PersistentFlags().BoolVar(&config.interactive, "interactive", false, "prompt for a single row's values on STDIN instead of reading a batch")
	cmd.PersistentFlags().StringVarP(&config.undefinedValue, "undefined-value", "u", "?", "value that marks a row's column as undefined (rejected: the forest has no missing-value branch)")
	return cmd
}

func (pcc *predictCmdConfig) run(ctx context.Context) error {
	if err := pcc.Validate(); err != nil {
		return err
	}
	cols, err := pcc.input.columns()
	if err != nil {
		return err
	}
	responseSpec, predictorCols, err := splitResponse(cols, pcc.input.responseName)
	if err != nil {
		return err
	}
	codec, err := parseCodec(pcc.codec)
	if err != nil {
		return err
	}
	f, err := readForest(pcc.forestInput, codec)
	if err != nil {
		return err
	}
	if pcc.interactive {
		return pcc.predictInteractive(f, predictorCols, responseSpec)
	}
	return pcc.predictBatch(ctx, f, predictorCols, responseSpec)
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.input.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.forestInput == "" {
		return fmt.Errorf("required forest flag was not set")
	}
	if pcc.input.responseName == "" {
		return fmt.Errorf("required response flag was not set")
	}
	return nil
}

func splitResponse(cols []feature.ColumnSpec, responseName string) (feature.ColumnSpec, []feature.ColumnSpec, error) {
	predictorCols := make([]feature.ColumnSpec, 0, len(cols))
	var resp feature.ColumnSpec
	found := false
	for _, c := range cols {
		if c.Name == responseName {
			resp = c
			found = true
			continue
		}
		predictorCols = append(predictorCols, c)
	}
	if !found {
		return feature.ColumnSpec{}, nil, fmt.Errorf("response column %q not declared in metadata", responseName)
	}
	return resp, predictorCols, nil
}

func (pcc *predictCmdConfig) predictBatch(ctx context.Context, f *forest.Forest, predictorCols []feature.ColumnSpec, responseSpec feature.ColumnSpec) error {
	batchInput := pcc.input
	batchInput.responseName = ""
	m, err := batchInput.loadMatrix(ctx, predictorCols, pcc.Logf)
	if err != nil {
		return fmt.Errorf("loading dataset: %v", err)
	}
	pt, err := m.Table()
	if err != nil {
		return err
	}
	w := walker.New(f, pt, nil)
	for row := 0; row < m.NRow; row++ {
		if responseSpec.Kind == feature.Factor {
			_, vote, _, err := w.PredictClassification(row, false, responseSpec.Cardinality())
			if err != nil {
				return err
			}
			fmt.Println(responseSpec.Levels[vote])
			continue
		}
		mean, _, err := w.PredictRegression(row, false)
		if err != nil {
			return err
		}
		fmt.Println(mean)
	}
	return nil
}

func (pcc *predictCmdConfig) predictInteractive(f *forest.Forest, predictorCols []feature.ColumnSpec, responseSpec feature.ColumnSpec) error {
	row, err := inputrow.Read(os.Stdin, predictorCols, stdoutRequester(pcc.undefinedValue), pcc.undefinedValue)
	if err != nil {
		return err
	}
	bld, err := dataset.NewBuilder(predictorCols, "")
	if err != nil {
		return err
	}
	if err := bld.AddRow(row, ""); err != nil {
		return err
	}
	pt, err := bld.Matrix().Table()
	if err != nil {
		return err
	}
	w := walker.New(f, pt, nil)
	if responseSpec.Kind == feature.Factor {
		census, vote, _, err := w.PredictClassification(0, false, responseSpec.Cardinality())
		if err != nil {
			return err
		}
		fmt.Printf("Predicted %s: %s (votes: %v)\n", responseSpec.Name, responseSpec.Levels[vote], census)
		return nil
	}
	mean, _, err := w.PredictRegression(0, false)
	if err != nil {
		return err
	}
	fmt.Printf("Predicted %s: %g\n", responseSpec.Name, mean)
	return nil
}
