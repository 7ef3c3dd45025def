package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/typeref"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	kindColor    = color.New(color.FgYellow)
	badColor     = color.New(color.FgRed)
)

var dumpCmd = &cobra.Command{
	Use:   "dump [images...]",
	Short: "Dump the reflection sections of images",
	RunE:  runDump,
}

var typeCmd = &cobra.Command{
	Use:   "type <mangled> [images...]",
	Short: "Decode a mangled type name",
	Long:  `Decode a mangled type name and print its type reference tree. Images are only needed for names that refer to nothing else.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runType,
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <mangled> [images...]",
	Short: "Resolve the fields of a nominal type",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFields,
}

func init() {
	dumpCmd.Flags().Bool("fields", false, "dump field descriptors")
	dumpCmd.Flags().Bool("assoc", false, "dump associated type descriptors")
	dumpCmd.Flags().Bool("builtins", false, "dump builtin type descriptors")
	dumpCmd.Flags().String("format", "text", "output format (text|msgpack)")

	typeCmd.Flags().Bool("print-name", false, "print the readable type name before the tree")
}

func runDump(cmd *cobra.Command, args []string) error {
	paths, err := active.imagesOrDefault(args)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	b, err := loadImages(cmd.Context(), active, paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "msgpack":
		return writeSnapshot(out, b)
	case "text":
	default:
		return fmt.Errorf("unknown format %q (text|msgpack)", format)
	}

	var sections []func(io.Writer) error
	for _, s := range []struct {
		flag string
		dump func(io.Writer) error
	}{
		{"fields", b.DumpFieldSection},
		{"assoc", b.DumpAssociatedTypeSection},
		{"builtins", b.DumpBuiltinTypeSection},
	} {
		on, err := cmd.Flags().GetBool(s.flag)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", s.flag, err)
		}
		if on {
			sections = append(sections, s.dump)
		}
	}
	if len(sections) == 0 {
		sections = append(sections, b.DumpAllSections)
	}

	var buf bytes.Buffer
	for _, dump := range sections {
		if err := dump(&buf); err != nil {
			return err
		}
	}
	_, err = io.WriteString(out, colorize(buf.String()))
	return err
}

// writeSnapshot encodes the snapshot as msgpack. Malformed records are
// reported on stderr; the snapshot is written regardless.
func writeSnapshot(w io.Writer, b *reflection.Builder) error {
	snap, snapErr := b.Snapshot()
	if snapErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", snapErr)
	}
	return msgpack.NewEncoder(w).Encode(snap)
}

// colorize highlights section headings, descriptor kinds and markers in
// dump output.
func colorize(text string) string {
	if color.NoColor {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case i+1 < len(lines) && isUnderline(lines[i+1], '='):
			lines[i] = headingColor.Sprint(line)
		case i+1 < len(lines) && isUnderline(lines[i+1], '-'):
			if open := strings.LastIndex(line, " ("); open >= 0 {
				lines[i] = line[:open+1] + kindColor.Sprint(line[open+1:])
			}
		case strings.HasPrefix(line, "<malformed:"), strings.HasPrefix(line, "<unknown:"):
			lines[i] = badColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

func isUnderline(line string, c byte) bool {
	return line != "" && strings.Trim(line, string(c)) == ""
}

func runType(cmd *cobra.Command, args []string) error {
	printName, err := cmd.Flags().GetBool("print-name")
	if err != nil {
		return fmt.Errorf("failed to get print-name flag: %w", err)
	}
	printName = printName || active.PrintTypeName

	b := reflection.New(&active.Builder)
	if len(args) > 1 {
		if b, err = loadImages(cmd.Context(), active, args[1:]); err != nil {
			return err
		}
	}
	return b.DumpTypeRef(cmd.OutOrStdout(), args[0], printName)
}

func runFields(cmd *cobra.Command, args []string) error {
	paths, err := active.imagesOrDefault(args[1:])
	if err != nil {
		return err
	}
	b, err := loadImages(cmd.Context(), active, paths)
	if err != nil {
		return err
	}

	tr, err := b.DecodeMangledType(args[0])
	if err != nil {
		return err
	}
	fd, err := b.GetFieldTypeInfo(tr)
	if err != nil {
		return err
	}
	fields, err := b.GetFieldTypeRefs(tr, fd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n\n", headingColor.Sprint(reflection.ReadableName(args[0])), kindColor.Sprint(fd.Kind))

	info, known := b.LayoutOf(tr)
	rows := make([][]string, 0, len(fields)+1)
	rows = append(rows, []string{"NAME", "TYPE", "OFFSET", "SIZE"})
	for i, f := range fields {
		row := []string{f.Name, typeName(f.Type), "?", "?"}
		if known && i < len(info.Fields) {
			row[2] = fmt.Sprint(info.Fields[i].Offset)
			row[3] = fmt.Sprint(info.Fields[i].Size)
		}
		rows = append(rows, row)
	}
	writeTable(out, rows)

	if known {
		fmt.Fprintf(out, "\nsize %d, alignment %d, stride %d, extra inhabitants %d, bitwise takable %t\n",
			info.Size, info.Align, info.Stride, info.NumExtraInhabitants, info.BitwiseTakable)
	} else {
		fmt.Fprintln(out, "\nlayout unknown")
	}
	return nil
}

// typeName renders a resolved field type on one line.
func typeName(tr typeref.TypeRef) string {
	if tr == nil {
		return "-"
	}
	return strings.Join(strings.Fields(typeref.String(tr)), " ")
}

// writeTable pads columns by display width, so non-ASCII field names stay
// aligned.
func writeTable(w io.Writer, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
