package trimerge

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

func generateText(lines int, prefix string) string {
	var builder strings.Builder
	builder.Grow(lines * 20)
	for i := 0; i < lines; i++ {
		builder.WriteString(prefix)
		builder.WriteString(strconv.Itoa(i))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func generateModifiedText(lines int, prefix string, changes int) string {
	var builder strings.Builder
	builder.Grow(lines * 25)
	for i := 0; i < lines; i++ {
		if i%10 == 0 && changes > 0 {
			builder.WriteString(prefix)
			builder.WriteString("_modified_")
			builder.WriteString(strconv.Itoa(i))
			builder.WriteByte('\n')
			changes--
		} else {
			builder.WriteString(prefix)
			builder.WriteString(strconv.Itoa(i))
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

func BenchmarkMerge(b *testing.B) {
	ctx := context.Background()
	benchmarks := []struct {
		name  string
		textO string
		textA string
		textB string
	}{
		{
			name:  "small",
			textO: generateText(100, "line"),
			textA: generateModifiedText(100, "line", 10),
			textB: generateModifiedText(100, "line", 15),
		},
		{
			name:  "medium",
			textO: generateText(1000, "line"),
			textA: generateModifiedText(1000, "line", 100),
			textB: generateModifiedText(1000, "line", 150),
		},
		{
			name:  "large",
			textO: generateText(10000, "line"),
			textA: generateModifiedText(10000, "line", 1000),
			textB: generateModifiedText(10000, "line", 1500),
		},
	}
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _, err := Merge(ctx, &MergeOptions{
					TextO: bm.textO,
					TextA: bm.textA,
					TextB: bm.textB,
				})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkMergeAlgorithms(b *testing.B) {
	ctx := context.Background()
	textO := generateText(1000, "line")
	textA := generateModifiedText(1000, "line", 100)
	textB := generateModifiedText(1000, "line", 150)
	for _, algo := range []Algorithm{Histogram, ONP, Myers, Patience} {
		b.Run(algo.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _, err := Merge(ctx, &MergeOptions{
					TextO: textO, TextA: textA, TextB: textB,
					A: algo,
				})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
