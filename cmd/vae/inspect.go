package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/born-vae/internal/serialization"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH",
		Short: "Show the header and tensors of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectHandler,
	}
}

func inspectHandler(cmd *cobra.Command, args []string) error {
	reader, err := serialization.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	out := cmd.OutOrStdout()
	header := reader.Header()

	fmt.Fprintf(out, "producer:   %s\n", header.Producer)
	fmt.Fprintf(out, "model:      %s\n", header.ModelType)
	fmt.Fprintf(out, "run:        %s\n", header.RunID)
	fmt.Fprintf(out, "created:    %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if meta := header.CheckpointMeta; meta != nil {
		fmt.Fprintf(out, "step:       %d\n", meta.Step)
		fmt.Fprintf(out, "loss:       %g\n", meta.Loss)
		fmt.Fprintf(out, "optimizer:  %s\n", meta.OptimizerType)
	}
	if len(header.Metadata) > 0 {
		keys := make([]string, 0, len(header.Metadata))
		for k := range header.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+header.Metadata[k])
		}
		fmt.Fprintf(out, "metadata:   %s\n", strings.Join(pairs, " "))
	}
	fmt.Fprintln(out)

	var data [][]string
	for _, name := range reader.TensorNames() {
		info, err := reader.TensorInfo(name)
		if err != nil {
			return err
		}
		data = append(data, []string{name, formatShape(info.Shape), info.DType, fmt.Sprint(info.Size)})
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"NAME", "SHAPE", "DTYPE", "BYTES"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}

func formatShape(shape []int) string {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(dims, " ") + "]"
}
