package datasets

import "strings"

type Type string

const (
	TypeRealEstate     Type = "realestate"
	TypeStartupFunding Type = "startupfunding"
)

func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeRealEstate:
		return TypeRealEstate, true
	case TypeStartupFunding:
		return TypeStartupFunding, true
	default:
		return "", false
	}
}

func (t Type) String() string {
	return string(t)
}
