package trimerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Sep1 signifies the start of a conflict.
	Sep1 = "<<<<<<<"
	// Sep2 signifies the middle of a conflict.
	Sep2 = "======="
	// Sep3 signifies the end of a conflict.
	Sep3 = ">>>>>>>"
	// SepO precedes the base version inside a conflict.
	SepO = "|||||||"
)

var (
	// ErrBrokenMatcher reports that the matching blocks produced by the
	// diff algorithm violate the merge invariants. It indicates a bug in
	// the matcher, never bad input.
	ErrBrokenMatcher = errors.New("matching blocks violate merge invariants")
	// errWordConflict aborts an enforced word merge that would have to
	// draw conflict markers between words.
	errWordConflict = errors.New("cannot show word conflicts")
)

// WordMergeMode governs whether a conflict region is retried at word
// granularity.
type WordMergeMode int

const (
	// WordMergeDisabled never attempts a word merge.
	WordMergeDisabled WordMergeMode = iota
	// WordMergeOnDemand merges lines first and retries each conflict
	// region at word granularity, keeping the line conflict when the
	// retry cannot resolve it.
	WordMergeOnDemand
	// WordMergeEnforced merges words and fails instead of drawing
	// conflict regions. Used by the on-demand retry.
	WordMergeEnforced
)

// Side selects a winner for conflict regions.
type Side int

const (
	SideNone Side = iota
	// SideLocal collapses every conflict to the local (A) version.
	SideLocal
	// SideOther collapses every conflict to the other (B) version.
	SideOther
)

// Markers holds the separator lines drawn around a conflict. An empty
// field suppresses that separator line; an empty Base also leaves out the
// base version, while both sides' content is always written.
type Markers struct {
	Start, Mid, End, Base string
}

// DefaultMarkers returns the conventional seven-character conflict
// markers. The base separator stays suppressed.
func DefaultMarkers() *Markers {
	return &Markers{Start: Sep1, Mid: Sep2, End: Sep3}
}

// Diff3Markers additionally emits the base version between ||||||| and
// =======. Minimization is usually left off with this style so the base
// hunk lines up with both sides.
func Diff3Markers() *Markers {
	return &Markers{Start: Sep1, Mid: Sep2, End: Sep3, Base: SepO}
}

// UnionMarkers suppresses every separator: a conflict region degrades to
// the two alternatives concatenated.
func UnionMarkers() *Markers {
	return &Markers{}
}

type MergeOptions struct {
	TextO, TextA, TextB    string
	LabelO, LabelA, LabelB string
	A                      Algorithm
	Mode                   WordMergeMode
	Markers                *Markers // nil means DefaultMarkers
	ForceSide              Side
	Minimize               bool
}

func (opts *MergeOptions) ValidateOptions() error {
	if opts == nil {
		return errors.New("invalid merge options")
	}
	if opts.A == Unspecified {
		opts.A = Histogram
	}
	if opts.Markers == nil {
		opts.Markers = DefaultMarkers()
	}
	if len(opts.LabelO) != 0 {
		opts.LabelO = " " + opts.LabelO
	}
	if len(opts.LabelA) != 0 {
		opts.LabelA = " " + opts.LabelA
	}
	if len(opts.LabelB) != 0 {
		opts.LabelB = " " + opts.LabelB
	}
	return nil
}

// syncRegion is a triple-aligned run where base, A and B all agree:
// base[z1:z2] == a[a1:a2] == b[b1:b2].
type syncRegion struct {
	z1, z2, a1, a2, b1, b2 int
}

type regionKind int8

const (
	regionUnchanged regionKind = iota // take base[start:end]
	regionSame                        // both sides made the identical change, take a[start:end]
	regionA                           // only A diverged, take a[start:end]
	regionB                           // only B diverged, take b[start:end]
	regionConflict                    // both diverged differently
)

// mergeRegion is one classified region of the merge. Non-conflict kinds
// use start/end in the owning sequence; conflicts carry all three ranges.
type mergeRegion struct {
	kind           regionKind
	start, end     int
	z1, z2         int
	a1, a2, b1, b2 int
}

type merge3 struct {
	sink       *Sink
	base, a, b []int
}

// findSyncRegions intersects the matching blocks of (base,a) and (base,b)
// into sync regions. There is always a zero-length sync region at the end
// of all three sequences.
func (m *merge3) findSyncRegions(ctx context.Context, algo Algorithm) ([]syncRegion, error) {
	changesA, err := diffInternal(ctx, m.base, m.a, algo)
	if err != nil {
		return nil, err
	}
	changesB, err := diffInternal(ctx, m.base, m.b, algo)
	if err != nil {
		return nil, err
	}
	am := matchingBlocks(changesA, len(m.base), len(m.a))
	bm := matchingBlocks(changesB, len(m.base), len(m.b))

	sl := make([]syncRegion, 0, max(len(am), len(bm)))
	ia, ib := 0, 0
	for ia < len(am) && ib < len(bm) {
		ablock, bblock := am[ia], bm[ib]
		// There is an unconflicted block at the intersection; it extends
		// until whichever side's block ends earlier in base.
		if lo, hi, ok := intersect(ablock.XOff, ablock.XOff+ablock.Len, bblock.XOff, bblock.XOff+bblock.Len); ok {
			asub := ablock.YOff + (lo - ablock.XOff)
			bsub := bblock.YOff + (lo - bblock.XOff)
			region := syncRegion{z1: lo, z2: hi, a1: asub, a2: asub + hi - lo, b1: bsub, b2: bsub + hi - lo}
			if !compareRange(m.base, region.z1, region.z2, m.a, region.a1, region.a2) ||
				!compareRange(m.base, region.z1, region.z2, m.b, region.b1, region.b2) {
				return nil, fmt.Errorf("sync region base[%d:%d] disagrees across sides: %w", lo, hi, ErrBrokenMatcher)
			}
			sl = append(sl, region)
		}
		if ablock.XOff+ablock.Len < bblock.XOff+bblock.Len {
			ia++
		} else {
			ib++
		}
	}
	sl = append(sl, syncRegion{
		z1: len(m.base), z2: len(m.base),
		a1: len(m.a), a2: len(m.a),
		b1: len(m.b), b2: len(m.b),
	})
	return sl, nil
}

// mergeRegions walks the sync regions and classifies every gap between
// them: identical change on both sides, change on one side only, or a
// conflict.
func (m *merge3) mergeRegions(syncs []syncRegion) ([]mergeRegion, error) {
	regions := make([]mergeRegion, 0, len(syncs)*2)
	iz, ia, ib := 0, 0, 0
	for _, sync := range syncs {
		if sync.a1 > ia || sync.b1 > ib {
			equalA := compareRange(m.a, ia, sync.a1, m.base, iz, sync.z1)
			equalB := compareRange(m.b, ib, sync.b1, m.base, iz, sync.z1)
			same := compareRange(m.a, ia, sync.a1, m.b, ib, sync.b1)
			switch {
			case same:
				regions = append(regions, mergeRegion{kind: regionSame, start: ia, end: sync.a1})
			case equalA && !equalB:
				regions = append(regions, mergeRegion{kind: regionB, start: ib, end: sync.b1})
			case equalB && !equalA:
				regions = append(regions, mergeRegion{kind: regionA, start: ia, end: sync.a1})
			case !equalA && !equalB:
				regions = append(regions, mergeRegion{
					kind: regionConflict,
					z1:   iz, z2: sync.z1,
					a1: ia, a2: sync.a1,
					b1: ib, b2: sync.b1,
				})
			default:
				return nil, fmt.Errorf("both sides equal base yet differ from each other: %w", ErrBrokenMatcher)
			}
			ia = sync.a1
			ib = sync.b1
		}
		// The same part of base deleted on both sides is skipped here.
		iz = sync.z1
		if sync.z2 > sync.z1 {
			regions = append(regions, mergeRegion{kind: regionUnchanged, start: sync.z1, end: sync.z2})
			iz = sync.z2
			ia = sync.a2
			ib = sync.b2
		}
	}
	return regions, nil
}

// minimize trims the leading and trailing runs where A and B agree out of
// each conflict region: identical edits at the edges of a conflict are
// not conflicting.
func (m *merge3) minimize(regions []mergeRegion) []mergeRegion {
	out := make([]mergeRegion, 0, len(regions))
	for _, r := range regions {
		if r.kind != regionConflict {
			out = append(out, r)
			continue
		}
		alen := r.a2 - r.a1
		blen := r.b2 - r.b1

		startMatches := 0
		for startMatches < alen && startMatches < blen &&
			m.a[r.a1+startMatches] == m.b[r.b1+startMatches] {
			startMatches++
		}
		endMatches := 0
		for endMatches < alen && endMatches < blen &&
			m.a[r.a2-endMatches-1] == m.b[r.b2-endMatches-1] {
			endMatches++
		}

		if startMatches > 0 {
			out = append(out, mergeRegion{kind: regionSame, start: r.a1, end: r.a1 + startMatches})
		}
		out = append(out, mergeRegion{
			kind: regionConflict,
			z1:   r.z1, z2: r.z2,
			a1: r.a1 + startMatches, a2: r.a2 - endMatches,
			b1: r.b1 + startMatches, b2: r.b2 - endMatches,
		})
		if endMatches > 0 {
			out = append(out, mergeRegion{kind: regionSame, start: r.a2 - endMatches, end: r.a2})
		}
	}
	return out
}

func (m *merge3) writeRange(out io.Writer, seq []int, lo, hi int) {
	for i := lo; i < hi; i++ {
		_, _ = io.WriteString(out, m.sink.Tokens[seq[i]])
	}
}

func composeMarker(marker, label string) string {
	if marker == "" {
		return ""
	}
	return marker + label
}

// render emits the merged text for the classified regions and returns the
// number of conflicts left in it, counted whether or not markers are drawn.
func (m *merge3) render(ctx context.Context, out io.Writer, regions []mergeRegion, opts *MergeOptions) (int, error) {
	// The marker terminator follows A's first line.
	newline := "\n"
	if len(m.a) > 0 {
		if first := m.sink.Tokens[m.a[0]]; strings.HasSuffix(first, "\r\n") {
			newline = "\r\n"
		} else if strings.HasSuffix(first, "\r") {
			newline = "\r"
		}
	}
	startMarker := composeMarker(opts.Markers.Start, opts.LabelA)
	endMarker := composeMarker(opts.Markers.End, opts.LabelB)
	baseMarker := composeMarker(opts.Markers.Base, opts.LabelO)
	midMarker := opts.Markers.Mid

	conflicts := 0
	for _, r := range regions {
		switch r.kind {
		case regionUnchanged:
			m.writeRange(out, m.base, r.start, r.end)
		case regionSame, regionA:
			m.writeRange(out, m.a, r.start, r.end)
		case regionB:
			m.writeRange(out, m.b, r.start, r.end)
		case regionConflict:
			if opts.ForceSide == SideLocal {
				m.writeRange(out, m.a, r.a1, r.a2)
				continue
			}
			if opts.ForceSide == SideOther {
				m.writeRange(out, m.b, r.b1, r.b2)
				continue
			}
			if opts.Mode == WordMergeEnforced {
				return conflicts, errWordConflict
			}
			if opts.Mode == WordMergeOnDemand {
				text, ok, err := m.tryWordMerge(ctx, opts.A, r)
				if err != nil {
					return conflicts, err
				}
				if ok {
					_, _ = io.WriteString(out, text)
					continue
				}
			}
			conflicts++
			if startMarker != "" {
				_, _ = io.WriteString(out, startMarker)
				_, _ = io.WriteString(out, newline)
			}
			m.writeRange(out, m.a, r.a1, r.a2)
			if baseMarker != "" {
				_, _ = io.WriteString(out, baseMarker)
				_, _ = io.WriteString(out, newline)
				m.writeRange(out, m.base, r.z1, r.z2)
			}
			if midMarker != "" {
				_, _ = io.WriteString(out, midMarker)
				_, _ = io.WriteString(out, newline)
			}
			m.writeRange(out, m.b, r.b1, r.b2)
			if endMarker != "" {
				_, _ = io.WriteString(out, endMarker)
				_, _ = io.WriteString(out, newline)
			}
		}
	}
	return conflicts, nil
}

// tryWordMerge retries one conflict region at word granularity. ok
// reports whether the retry fully resolved the region.
func (m *merge3) tryWordMerge(ctx context.Context, algo Algorithm, r mergeRegion) (text string, ok bool, err error) {
	subO := m.sink.joinRange(m.base, r.z1, r.z2)
	subA := m.sink.joinRange(m.a, r.a1, r.a2)
	subB := m.sink.joinRange(m.b, r.b1, r.b2)
	text, _, err = Merge(ctx, &MergeOptions{
		TextO: subO, TextA: subA, TextB: subB,
		A:    algo,
		Mode: WordMergeEnforced,
	})
	if err != nil {
		if errors.Is(err, errWordConflict) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

func (m *merge3) split(opts *MergeOptions) {
	if opts.Mode == WordMergeEnforced {
		m.base = m.sink.SplitWordsFolded(opts.TextO)
		m.a = m.sink.SplitWordsFolded(opts.TextA)
		m.b = m.sink.SplitWordsFolded(opts.TextB)
		return
	}
	m.base = m.sink.SplitLines(opts.TextO)
	m.a = m.sink.SplitLines(opts.TextA)
	m.b = m.sink.SplitLines(opts.TextB)
}

func (m *merge3) regions(ctx context.Context, opts *MergeOptions) ([]mergeRegion, error) {
	syncs, err := m.findSyncRegions(ctx, opts.A)
	if err != nil {
		return nil, err
	}
	regions, err := m.mergeRegions(syncs)
	if err != nil {
		return nil, err
	}
	if opts.Minimize {
		regions = m.minimize(regions)
	}
	return regions, nil
}

// Merge performs a three-way merge of TextA and TextB against their
// common ancestor TextO. It returns the merged text and the number of
// conflict regions rendered into it.
func Merge(ctx context.Context, opts *MergeOptions) (string, int, error) {
	if err := opts.ValidateOptions(); err != nil {
		return "", 0, err
	}
	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
	}
	m := &merge3{sink: NewSink()}
	m.split(opts)
	regions, err := m.regions(ctx, opts)
	if err != nil {
		return "", 0, err
	}
	out := &strings.Builder{}
	out.Grow(max(len(opts.TextO), len(opts.TextA), len(opts.TextB)))
	conflicts, err := m.render(ctx, out, regions, opts)
	if err != nil {
		return "", 0, err
	}
	return out.String(), conflicts, nil
}

// DefaultMerge merges with the histogram algorithm, conventional markers
// and minimized conflicts.
func DefaultMerge(ctx context.Context, o, a, b string, labelO, labelA, labelB string) (string, int, error) {
	return Merge(ctx, &MergeOptions{
		TextO: o, TextA: a, TextB: b,
		LabelO: labelO, LabelA: labelA, LabelB: labelB,
		A:        Histogram,
		Minimize: true,
	})
}

// GroupKind tags one entry of a MergeGroups result.
type GroupKind int8

const (
	GroupUnchanged GroupKind = iota
	GroupSame
	GroupA
	GroupB
	GroupConflict
)

// Group is one region of the merge in resolved token form, for callers
// that render their own output instead of conflict markers.
type Group struct {
	Kind   GroupKind
	Tokens []string // content for non-conflict groups
	O      []string // conflict: base version
	A      []string // conflict: local version
	B      []string // conflict: other version
}

func (m *merge3) resolve(seq []int, lo, hi int) []string {
	if lo >= hi {
		return nil
	}
	tokens := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		tokens = append(tokens, m.sink.Tokens[seq[i]])
	}
	return tokens
}

// MergeGroups returns the classified merge regions with their content,
// honoring Mode for tokenization and Minimize. Markers, labels and
// ForceSide do not apply.
func MergeGroups(ctx context.Context, opts *MergeOptions) ([]Group, error) {
	if err := opts.ValidateOptions(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m := &merge3{sink: NewSink()}
	m.split(opts)
	regions, err := m.regions(ctx, opts)
	if err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(regions))
	for _, r := range regions {
		switch r.kind {
		case regionUnchanged:
			groups = append(groups, Group{Kind: GroupUnchanged, Tokens: m.resolve(m.base, r.start, r.end)})
		case regionSame:
			groups = append(groups, Group{Kind: GroupSame, Tokens: m.resolve(m.a, r.start, r.end)})
		case regionA:
			groups = append(groups, Group{Kind: GroupA, Tokens: m.resolve(m.a, r.start, r.end)})
		case regionB:
			groups = append(groups, Group{Kind: GroupB, Tokens: m.resolve(m.b, r.start, r.end)})
		case regionConflict:
			groups = append(groups, Group{
				Kind: GroupConflict,
				O:    m.resolve(m.base, r.z1, r.z2),
				A:    m.resolve(m.a, r.a1, r.a2),
				B:    m.resolve(m.b, r.b1, r.b2),
			})
		}
	}
	return groups, nil
}
