package tabl

import "fmt"

// Options configures a table read. Construct with DefaultOptions and apply
// functional setters (WithSeparator, WithHeader, ...), or build directly
// with NewOptions(opts...) which also runs Validate.
type Options struct {
	Header        bool
	Separator     byte
	QuoteMarks    []byte
	Decimal       byte
	NAStrings     []string
	TrueStrings   []string
	FalseStrings  []string
	MakeFactors   bool
	NRows         int
	Names         []string
	ElTypes       []string
	AllowComments bool
	CommentMark   byte
	IgnorePadding bool
	SkipStart     int
	SkipRows      []int
	SkipBlanks    bool
	Encoding      string
	AllowEscapes  bool
	OnBadRow      BadLineMode

	separatorSet  bool
	namesNewSet   bool
	namesOldSet   bool
	eltypesNewSet bool
	eltypesOldSet bool
	warnings      []DeprecationWarning
}

// DefaultOptions returns the default parsing options.
func DefaultOptions() Options {
	return Options{
		Header:       true,
		Separator:    ',',
		QuoteMarks:   []byte{'"'},
		Decimal:      '.',
		NAStrings:    []string{"", "NA"},
		TrueStrings:  []string{"T", "t", "TRUE", "true"},
		FalseStrings: []string{"F", "f", "FALSE", "false"},
		NRows:        -1,
		IgnorePadding: true,
		SkipBlanks:    true,
		Encoding:      "utf8",
		OnBadRow:      BadLineModeError,
	}
}

// Option mutates an Options value under construction.
type Option func(*Options)

// NewOptions applies opts over DefaultOptions and validates the result.
func NewOptions(opts ...Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Warnings returns any deprecation notices recorded while applying options
// (e.g. use of WithColnames instead of WithNames).
func (o Options) Warnings() []DeprecationWarning {
	return o.warnings
}

func WithHeader(b bool) Option { return func(o *Options) { o.Header = b } }

func WithSeparator(sep byte) Option {
	return func(o *Options) {
		o.Separator = sep
		o.separatorSet = true
	}
}

func WithQuoteMarks(marks ...byte) Option {
	return func(o *Options) { o.QuoteMarks = append([]byte(nil), marks...) }
}

func WithDecimal(d byte) Option { return func(o *Options) { o.Decimal = d } }

func WithNAStrings(ss ...string) Option {
	return func(o *Options) { o.NAStrings = append([]string(nil), ss...) }
}

func WithTrueStrings(ss ...string) Option {
	return func(o *Options) { o.TrueStrings = append([]string(nil), ss...) }
}

func WithFalseStrings(ss ...string) Option {
	return func(o *Options) { o.FalseStrings = append([]string(nil), ss...) }
}

func WithMakeFactors(b bool) Option { return func(o *Options) { o.MakeFactors = b } }

func WithNRows(n int) Option { return func(o *Options) { o.NRows = n } }

func WithNames(names ...string) Option {
	return func(o *Options) {
		o.Names = append([]string(nil), names...)
		o.namesNewSet = true
	}
}

func WithElTypes(types ...string) Option {
	return func(o *Options) {
		o.ElTypes = append([]string(nil), types...)
		o.eltypesNewSet = true
	}
}

func WithAllowComments(b bool) Option { return func(o *Options) { o.AllowComments = b } }

func WithCommentMark(b byte) Option { return func(o *Options) { o.CommentMark = b } }

func WithIgnorePadding(b bool) Option { return func(o *Options) { o.IgnorePadding = b } }

func WithSkipStart(n int) Option { return func(o *Options) { o.SkipStart = n } }

func WithSkipRows(rows ...int) Option {
	return func(o *Options) { o.SkipRows = append([]int(nil), rows...) }
}

func WithSkipBlanks(b bool) Option { return func(o *Options) { o.SkipBlanks = b } }

func WithEncoding(enc string) Option { return func(o *Options) { o.Encoding = enc } }

func WithAllowEscapes(b bool) Option { return func(o *Options) { o.AllowEscapes = b } }

func WithOnBadRow(mode BadLineMode) Option { return func(o *Options) { o.OnBadRow = mode } }

// WithColnames is a deprecated alias for WithNames.
func WithColnames(names ...string) Option {
	return func(o *Options) {
		o.Names = append([]string(nil), names...)
		o.namesOldSet = true
		o.warnings = append(o.warnings, DeprecationWarning{Old: "colnames", New: "names"})
	}
}

// WithColtypes is a deprecated alias for WithElTypes.
func WithColtypes(types ...string) Option {
	return func(o *Options) {
		o.ElTypes = append([]string(nil), types...)
		o.eltypesOldSet = true
		o.warnings = append(o.warnings, DeprecationWarning{Old: "coltypes", New: "eltypes"})
	}
}

var validElTypes = map[string]bool{"": true, "i64": true, "f64": true, "bool": true, "string": true}

// Validate checks the option set for configuration errors detectable
// before any byte is read: unsupported encoding, a non-'.' decimal, a
// non-empty skiprows, an invalid declared element type, or conflicting
// deprecated-and-new option pairs.
func (o Options) Validate() error {
	if o.Separator == 0 {
		return &ConfigError{Field: "separator", Message: "must not be the zero byte"}
	}
	if len(o.QuoteMarks) == 0 {
		return &ConfigError{Field: "quotemark", Message: "must name at least one byte"}
	}
	if o.Decimal != '.' {
		return &ConfigError{Field: "decimal", Message: "only '.' is supported"}
	}
	if o.Encoding != "utf8" {
		return &ConfigError{Field: "encoding", Message: "only \"utf8\" is supported"}
	}
	if len(o.SkipRows) != 0 {
		return &ConfigError{Field: "skiprows", Message: "unsupported, must be empty"}
	}
	for _, t := range o.ElTypes {
		if !validElTypes[t] {
			return &ConfigError{Field: "eltypes", Message: fmt.Sprintf("invalid declared element type %q", t)}
		}
	}
	if o.namesNewSet && o.namesOldSet {
		return &ConfigError{Field: "names", Message: "both names and the deprecated colnames were set"}
	}
	if o.eltypesNewSet && o.eltypesOldSet {
		return &ConfigError{Field: "eltypes", Message: "both eltypes and the deprecated coltypes were set"}
	}
	return nil
}
