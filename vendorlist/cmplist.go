package vendorlist

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// CMP is one registered Consent Management Platform.
type CMP struct {
	ID           uint16
	Name         string
	IsCommercial bool
	DeletedDate  time.Time
}

// CMPList is a parsed CMP list. It is safe for concurrent use.
type CMPList struct {
	lastUpdated time.Time
	cmps        map[uint16]CMP
}

// ParseCMPList reads the IAB CMP list, an object of CMPs keyed by id under "cmps".
func ParseCMPList(data []byte) (*CMPList, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("cmp list is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	cmps := root.Get("cmps")
	if !cmps.IsObject() {
		return nil, errors.New("cmp list has no cmps object")
	}

	list := &CMPList{
		lastUpdated: parseTime(root.Get("lastUpdated")),
		cmps:        make(map[uint16]CMP),
	}
	cmps.ForEach(func(_, value gjson.Result) bool {
		id := value.Get("id").Uint()
		if id == 0 {
			return true
		}
		list.cmps[uint16(id)] = CMP{
			ID:           uint16(id),
			Name:         value.Get("name").String(),
			IsCommercial: value.Get("isCommercial").Bool(),
			DeletedDate:  parseTime(value.Get("deletedDate")),
		}
		return true
	})
	return list, nil
}

func parseTime(result gjson.Result) time.Time {
	if !result.Exists() {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, result.String())
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// LastUpdated is when the list was published.
func (l *CMPList) LastUpdated() time.Time {
	return l.lastUpdated
}

// CMP returns the CMP with the given id.
func (l *CMPList) CMP(id uint16) (CMP, bool) {
	cmp, ok := l.cmps[id]
	return cmp, ok
}

// Len returns the number of CMPs in the list.
func (l *CMPList) Len() int {
	return len(l.cmps)
}
