package feed

import (
	"bytes"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/omnis-dev/omnis/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Data holds the typed feed entries. A nil field means the key was absent.
type Data struct {
	Transactions    *model.FeedTransactions
	Investments     []model.Investment
	Balance         *model.Balance
	ProductOffered  *model.ProductOffer
	ApplicationData *model.LoanApplication
}

// Decoder turns the raw JSON value of one feed key into Data.
type Decoder interface {
	Decode(raw []byte, into *Data) error
	Key() string
}

// LineResult reports what happened to one feed line.
type LineResult struct {
	Index   int
	Key     string
	Decoded bool
	Err     error // skip reason when !Decoded
}

// Registry holds decoders by key.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry creates an empty decoder registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register adds a decoder. Panics on duplicate key.
func (r *Registry) Register(d Decoder) {
	key := normalizeKey(d.Key())
	if _, ok := r.decoders[key]; ok {
		panic("duplicate feed decoder: " + key)
	}
	r.decoders[key] = d
}

// Get returns the decoder for key, or nil. Keys match case-insensitively and
// ignore underscores, so "product_offered" finds "productOffered".
func (r *Registry) Get(key string) Decoder {
	return r.decoders[normalizeKey(key)]
}

// DefaultRegistry returns a registry with decoders for every known key.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(valueDecoder[model.FeedTransactions]{key: "transactions", assign: func(d *Data, v model.FeedTransactions) { d.Transactions = &v }})
	r.Register(valueDecoder[[]model.Investment]{key: "investments", assign: func(d *Data, v []model.Investment) { d.Investments = v }})
	r.Register(valueDecoder[model.Balance]{key: "balance", assign: func(d *Data, v model.Balance) { d.Balance = &v }})
	r.Register(valueDecoder[model.ProductOffer]{key: "productOffered", assign: func(d *Data, v model.ProductOffer) { d.ProductOffered = &v }})
	r.Register(valueDecoder[model.LoanApplication]{key: "applicationData", assign: func(d *Data, v model.LoanApplication) { d.ApplicationData = &v }})
	return r
}

// Parse runs every line through SplitLine and the matching decoder. A line
// that fails at either stage is reported in the results and skipped; it
// never stops the remaining lines.
func (r *Registry) Parse(lines []string) (Data, []LineResult) {
	var data Data
	results := make([]LineResult, 0, len(lines))

	for i, line := range lines {
		res := LineResult{Index: i}

		key, value, err := SplitLine(line)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Key = key

		dec := r.Get(key)
		if dec == nil {
			res.Err = ErrUnknownKey
			results = append(results, res)
			continue
		}

		// Decode into a scratch copy so a failing decoder cannot leave
		// a half-written entry behind.
		next := data
		if err := dec.Decode([]byte(value), &next); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		data = next
		res.Decoded = true
		results = append(results, res)
	}

	return data, results
}

type valueDecoder[T any] struct {
	key    string
	assign func(*Data, T)
}

func (d valueDecoder[T]) Key() string { return d.key }

func (d valueDecoder[T]) Decode(raw []byte, into *Data) error {
	if string(bytes.TrimSpace(raw)) == "null" {
		return fmt.Errorf("decoding %s: %w", d.key, ErrEmptyValue)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding %s: %w", d.key, err)
	}
	d.assign(into, v)
	return nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "_", ""))
}
