package dump

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/internal/errors"
	"github.com/smartcity/citydump/internal/util"
)

// TimestampFormat is how time values are written into a dump
const TimestampFormat = "2006-01-02T15:04:05.999999-07:00"

// Literal renders v as a SQL literal for an INSERT statement in the
// given dialect.
//
//	nil                 NULL
//	string, []byte      quoted text, see below
//	bool                TRUE / FALSE
//	integers, floats    unquoted; NaN and infinities are refused
//	time.Time           quoted ISO-8601
//	maps, slices, ...   quoted JSON text
//
// Quoted text never contains a raw line break, so every INSERT of a dump
// stays on one line. MySQL literals escape backslashes and control
// characters. PostgreSQL literals containing line breaks are written as
// E'' escape strings.
func Literal(dialect string, v interface{}) (string, error) {
	var quote func(string) string
	switch dialect {
	case citydump.DialectMySQL:
		quote = util.MySQLString
	case citydump.DialectPostgres:
		quote = util.PostgresString
	default:
		return "", errors.Errorf(`unknown dialect %q`, dialect)
	}
	return literal(quote, v)
}

func literal(quote func(string) string, v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quote(x), nil
	case []byte:
		if x == nil {
			return "NULL", nil
		}
		return quote(string(x)), nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10), nil
	case float32:
		if err := checkFinite(float64(x)); err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		if err := checkFinite(x); err != nil {
			return "", err
		}
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return quote(x.Format(TimestampFormat)), nil
	case json.RawMessage:
		return quote(string(x)), nil
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return "", errors.Wrapf(err, `failed to get driver value of %T`, v)
		}
		return literal(quote, dv)
	case fmt.Stringer:
		return quote(x.String()), nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrapf(err, `failed to encode %T as JSON`, v)
		}
		return quote(string(buf)), nil
	case reflect.Ptr:
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return "NULL", nil
		}
		return literal(quote, rv.Elem().Interface())
	}

	return "", errors.Errorf(`cannot render %T as a SQL literal`, v)
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Errorf(`cannot render %v as a SQL literal`, f)
	}
	return nil
}
