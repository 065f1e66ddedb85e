package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const lawDateLayout = "20060102"

// LawDate is a calendar date encoded as YYYYMMDD, or the empty string when unset
type LawDate struct {
	time.Time
}

// ParseLawDate parses a YYYYMMDD string. Empty or malformed input yields an unset date
func ParseLawDate(s string) LawDate {
	t, err := time.Parse(lawDateLayout, strings.TrimSpace(s))
	if err != nil {
		return LawDate{}
	}
	return LawDate{Time: t}
}

// IsSet reports whether the date carries a value
func (d LawDate) IsSet() bool {
	return !d.Time.IsZero()
}

// String formats the date as YYYYMMDD or ""
func (d LawDate) String() string {
	if !d.IsSet() {
		return ""
	}
	return d.Time.Format(lawDateLayout)
}

// MarshalJSON implements json.Marshaler
func (d LawDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *LawDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseLawDate(s)
	return nil
}

// Law is one statute with its ordered heading and article records.
// Record order is load order and is the only source of hierarchy information
type Law struct {
	Name          string     `json:"LawName"`
	Level         string     `json:"LawLevel"`
	URL           string     `json:"LawURL,omitempty"`
	PCode         string     `json:"LawPCode,omitempty"`
	ModifiedDate  LawDate    `json:"LawModifiedDate"`
	EffectiveDate LawDate    `json:"LawEffectiveDate"`
	AbandonNote   string     `json:"LawAbandonNote,omitempty"`
	Embedded      bool       `json:"LawEmbedded,omitempty"`
	Articles      []*Article `json:"LawArticles"`
}

// IsAbandoned reports whether the statute has been repealed
func (l *Law) IsAbandoned() bool {
	return strings.TrimSpace(l.AbandonNote) != ""
}

// Validate checks the shape invariants of a loaded law: a name, known record
// types, empty heading numbers and unique article numbers
func (l *Law) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrBlankLawName
	}
	seen := make(map[string]struct{}, len(l.Articles))
	for i, a := range l.Articles {
		if a == nil {
			return fmt.Errorf("%w: %s record %d is null", ErrDataCorruption, l.Name, i)
		}
		switch a.Type {
		case ArticleTypeHeading:
			if a.Number != "" {
				return fmt.Errorf("%w: %s heading %d has number %q", ErrDataCorruption, l.Name, i, a.Number)
			}
		case ArticleTypeArticle:
			if a.Number == "" {
				return fmt.Errorf("%w: %s article %d has no number", ErrDataCorruption, l.Name, i)
			}
			if _, dup := seen[a.Number]; dup {
				return fmt.Errorf("%w: %s article number %q repeated", ErrDataCorruption, l.Name, a.Number)
			}
			seen[a.Number] = struct{}{}
		default:
			return fmt.Errorf("%w: %s record %d has type %q", ErrDataCorruption, l.Name, i, a.Type)
		}
	}
	return nil
}

// UnmarshalJSON decodes a persisted law and stamps the law name on each article
func (l *Law) UnmarshalJSON(data []byte) error {
	type plain Law
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Law(p)
	for _, a := range l.Articles {
		if a == nil {
			continue
		}
		a.LawName = l.Name
		// older documents carried no type; headings are the unnumbered records
		if a.Type == "" {
			if a.Number == "" {
				a.Type = ArticleTypeHeading
			} else {
				a.Type = ArticleTypeArticle
			}
		}
	}
	return nil
}
