package dispatch

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single name/value pair sent to the API.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered parameter list. Unlike url.Values, encoding preserves
// the order pairs were added in, which is the order the remote API sees.
type Params []Param

// Encode renders the parameters in application/x-www-form-urlencoded form,
// in insertion order.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

func param(name, value string) Param {
	return Param{Name: name, Value: value}
}

func intParam(name string, value int) Param {
	return Param{Name: name, Value: strconv.Itoa(value)}
}

func int64Param(name string, value int64) Param {
	return Param{Name: name, Value: strconv.FormatInt(value, 10)}
}
