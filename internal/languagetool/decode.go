package languagetool

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grammarcheck/internal/problem"
	"grammarcheck/internal/textpos"
)

// Positioner converts a (line, column) pair to an absolute offset.
type Positioner interface {
	Offset(line, column int) int
}

// Decoder turns a response body into normalized matches.
type Decoder interface {
	// Name is the schema name used in configuration ("json", "xml").
	Name() string
	// CanDecode returns true if the decoder handles the given media type.
	CanDecode(mediaType string) bool
	// Decode parses body. text is the submitted text and pos maps its
	// lines and columns to offsets.
	Decode(body []byte, text string, pos Positioner) ([]problem.Match, error)
}

var errNoMatches = errors.New("missing matches")

// --- JSON schema ---

type jsonResponse struct {
	Matches *[]jsonMatch `json:"matches"`
}

type jsonMatch struct {
	Message      string       `json:"message"`
	Offset       int          `json:"offset"`
	Length       int          `json:"length"`
	Replacements []jsonValue  `json:"replacements"`
	Rule         jsonRuleInfo `json:"rule"`
}

type jsonValue struct {
	Value string `json:"value"`
}

type jsonRuleInfo struct {
	ID       string       `json:"id"`
	Category jsonCategory `json:"category"`
	URLs     []jsonValue  `json:"urls"`
}

type jsonCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JSONDecoder reads the v2 API response, {"matches": [...]}.
type JSONDecoder struct{}

func NewJSONDecoder() *JSONDecoder { return &JSONDecoder{} }

func (d *JSONDecoder) Name() string { return FormatJSON }

func (d *JSONDecoder) CanDecode(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (d *JSONDecoder) Decode(body []byte, text string, _ Positioner) ([]problem.Match, error) {
	var resp jsonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if resp.Matches == nil {
		return nil, errNoMatches
	}

	// Server offsets count UTF-16 code units.
	idx := textpos.NewUTF16Index(text)

	matches := make([]problem.Match, 0, len(*resp.Matches))
	for i, m := range *resp.Matches {
		if m.Offset < 0 || m.Length < 0 {
			return nil, fmt.Errorf("match %d: invalid range offset=%d length=%d", i, m.Offset, m.Length)
		}
		start := idx.RuneOffset(m.Offset)
		end := idx.RuneOffset(m.Offset + m.Length)

		replacements := make([]string, 0, len(m.Replacements))
		for _, r := range m.Replacements {
			replacements = append(replacements, r.Value)
		}
		urls := make([]string, 0, len(m.Rule.URLs))
		for _, u := range m.Rule.URLs {
			urls = append(urls, u.Value)
		}

		matches = append(matches, problem.Match{
			Offset:       start,
			Length:       end - start,
			Category:     m.Rule.Category.Name,
			Message:      m.Message,
			Replacements: replacements,
			RuleID:       m.Rule.ID,
			URLs:         urls,
		})
	}
	return matches, nil
}

// --- XML schema ---

type xmlError struct {
	FromX        string `xml:"fromx,attr"`
	FromY        string `xml:"fromy,attr"`
	ToX          string `xml:"tox,attr"`
	ToY          string `xml:"toy,attr"`
	RuleID       string `xml:"ruleId,attr"`
	Category     string `xml:"category,attr"`
	Msg          string `xml:"msg,attr"`
	Replacements string `xml:"replacements,attr"`
	URL          string `xml:"url,attr"`
}

// XMLDecoder reads the legacy API response, <matches><error .../></matches>.
type XMLDecoder struct {
	// SplitReplacements splits the replacements attribute on '#'. When
	// false the attribute is taken as a single suggestion.
	SplitReplacements bool
}

func NewXMLDecoder(splitReplacements bool) *XMLDecoder {
	return &XMLDecoder{SplitReplacements: splitReplacements}
}

func (d *XMLDecoder) Name() string { return FormatXML }

func (d *XMLDecoder) CanDecode(mediaType string) bool {
	return mediaType == "text/xml" || mediaType == "application/xml" || strings.HasSuffix(mediaType, "+xml")
}

func (d *XMLDecoder) Decode(body []byte, text string, pos Positioner) ([]problem.Match, error) {
	if pos == nil {
		pos = textpos.NewMap(text)
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	sawRoot := false
	matches := make([]problem.Match, 0)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if start.Name.Local != "matches" {
				return nil, fmt.Errorf("root element <%s>: %w", start.Name.Local, errNoMatches)
			}
			sawRoot = true
			continue
		}
		if start.Name.Local != "error" {
			continue
		}

		var e xmlError
		if err := dec.DecodeElement(&e, &start); err != nil {
			return nil, fmt.Errorf("decode xml error element: %w", err)
		}
		m, err := d.convert(e, pos)
		if err != nil {
			return nil, fmt.Errorf("error element %d: %w", len(matches), err)
		}
		matches = append(matches, m)
	}

	if !sawRoot {
		return nil, fmt.Errorf("no root element: %w", errNoMatches)
	}
	return matches, nil
}

func (d *XMLDecoder) convert(e xmlError, pos Positioner) (problem.Match, error) {
	coords := make([]int, 4)
	for i, raw := range []string{e.FromX, e.FromY, e.ToX, e.ToY} {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return problem.Match{}, fmt.Errorf("invalid coordinate %q: %w", raw, err)
		}
		coords[i] = n
	}

	start := pos.Offset(coords[1], coords[0])
	end := pos.Offset(coords[3], coords[2])
	if end < start {
		return problem.Match{}, fmt.Errorf("range ends before it starts (%d > %d)", start, end)
	}

	replacements := make([]string, 0)
	if d.SplitReplacements {
		for _, r := range strings.Split(e.Replacements, "#") {
			if r != "" {
				replacements = append(replacements, r)
			}
		}
	} else if e.Replacements != "" {
		replacements = append(replacements, e.Replacements)
	}

	urls := make([]string, 0, 1)
	if e.URL != "" {
		urls = append(urls, e.URL)
	}

	return problem.Match{
		Offset:       start,
		Length:       end - start,
		Category:     e.Category,
		Message:      e.Msg,
		Replacements: replacements,
		RuleID:       e.RuleID,
		URLs:         urls,
	}, nil
}

// sniff guesses the schema of a body from its first non-space byte.
func sniff(body []byte) string {
	trimmed := bytes.TrimLeft(body, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '{':
		return FormatJSON
	case '<':
		return FormatXML
	}
	return ""
}
