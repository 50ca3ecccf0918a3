package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolbox/internal/conversions/bytesize"
	"toolbox/internal/conversions/roman"
	"toolbox/internal/generate"
	"toolbox/internal/humanize"
)

var (
	bytesLowest bool

	humanizeOpts  = humanize.DefaultCountOptions()
	humanizeWords bool

	genMin  float64
	genMax  float64
	genSeed uint64
)

// bytesCmd converts between storage units
var bytesCmd = &cobra.Command{
	Use:   "bytes [value] [from-unit] [to-unit...]",
	Short: "Convert a quantity between storage units",
	Long: `Converts a quantity between byte and bit units (1024 based).

Units may be abbreviations (KB, GiB, Mb) or names (megabytes, gigabit).
Abbreviations are case sensitive: "Gb" is a gigabit, "GB" a gigabyte.
Without target units the value is shown in its lowest whole unit.

Examples:
  toolbox bytes 1 GB MB KB
  toolbox bytes 1536 bytes --lowest`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBytes,
}

// humanizeCmd renders numbers for people
var humanizeCmd = &cobra.Command{
	Use:   "humanize [number] [noun]",
	Short: "Commify a number, spell it out or count a noun",
	Example: `  toolbox humanize 1234567
  toolbox humanize 3 mouse --words --capitalize
  toolbox humanize 2.456 kilobyte --round 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runHumanize,
}

// romanCmd converts roman numerals
var romanCmd = &cobra.Command{
	Use:   "roman [numeral|integer]",
	Short: "Convert between roman numerals and integers",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoman,
}

// generateCmd produces random decimals
var generateCmd = &cobra.Command{
	Use:   "generate [count]",
	Short: "Print random decimals",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	bytesCmd.Flags().BoolVar(&bytesLowest, "lowest", false, "Also show the lowest whole unit")

	humanizeCmd.Flags().BoolVar(&humanizeWords, "words", false, "Spell the number in words")
	humanizeCmd.Flags().BoolVar(&humanizeOpts.SkipCommify, "no-commify", false, "Omit thousands separators")
	humanizeCmd.Flags().BoolVar(&humanizeOpts.OnlyNoun, "only-noun", false, "Print only the inflected noun")
	humanizeCmd.Flags().BoolVar(&humanizeOpts.Capitalize, "capitalize", false, "Capitalize the first letter")
	humanizeCmd.Flags().BoolVar(&humanizeOpts.FullStop, "full-stop", false, "End with a period")
	humanizeCmd.Flags().BoolVar(&humanizeOpts.AsInt, "int", false, "Truncate to an integer")
	humanizeCmd.Flags().IntVar(&humanizeOpts.Round, "round", humanize.NoRounding, "Round to this many decimal places")

	generateCmd.Flags().Float64Var(&genMin, "min", 0, "Lower bound (inclusive)")
	generateCmd.Flags().Float64Var(&genMax, "max", 1, "Upper bound (exclusive)")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0, "Seed for reproducible output (0 for random)")

	rootCmd.AddCommand(bytesCmd)
	rootCmd.AddCommand(humanizeCmd)
	rootCmd.AddCommand(romanCmd)
	rootCmd.AddCommand(generateCmd)
}

func runBytes(cmd *cobra.Command, args []string) error {
	n, err := humanize.Parse(args[0], "")
	if err != nil {
		return err
	}
	size, err := bytesize.New(n.Number, args[1])
	if err != nil {
		return unitError(err)
	}

	from := fmt.Sprintf("%s %s", formatAmount(size.Value), size.Unit.Abbrev)
	targets := args[2:]
	if len(targets) == 0 || bytesLowest {
		low := size.LowestUnit()
		fmt.Printf("%s = %s %s\n", from, formatAmount(low.Value), low.Unit.Abbrev)
	}
	for _, to := range targets {
		u, err := bytesize.ParseUnit(to)
		if err != nil {
			return unitError(err)
		}
		fmt.Printf("%s = %s %s\n", from, formatAmount(size.In(u)), u.Abbrev)
	}
	return nil
}

func unitError(err error) error {
	var ue *bytesize.UnknownUnitError
	if errors.As(err, &ue) {
		logger.Debug("Unknown unit", zap.String("unit", ue.Name), zap.String("suggestion", ue.Suggestion))
	}
	return err
}

// formatAmount commifies v, keeping at most four decimal places.
func formatAmount(v float64) string {
	return humanize.CommifyNumber(math.Round(v*1e4) / 1e4)
}

func runHumanize(cmd *cobra.Command, args []string) error {
	noun := ""
	if len(args) > 1 {
		noun = args[1]
	}
	n, err := humanize.Parse(args[0], noun)
	if err != nil {
		return err
	}

	opts := humanizeOpts
	opts.ToWords = humanizeWords
	fmt.Println(n.CountNoun(opts))
	return nil
}

func runRoman(cmd *cobra.Command, args []string) error {
	in := strings.TrimSpace(args[0])
	if i, err := strconv.Atoi(in); err == nil {
		numeral, err := roman.FromInt(i)
		if err != nil {
			return err
		}
		fmt.Println(numeral)
		return nil
	}

	n, err := roman.ToNumerical(strings.ToUpper(in), "")
	if err != nil {
		return err
	}
	fmt.Printf("%d (%s)\n", int(n.Number), n.Words())
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", args[0], err)
	}

	var values []float64
	if genSeed != 0 {
		values, err = generate.NewGenerator(genSeed).RandomDecimals(count, genMin, genMax)
	} else {
		values, err = generate.RandomDecimals(count, genMin, genMax)
	}
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Println(strconv.FormatFloat(v, 'f', 6, 64))
	}
	return nil
}
