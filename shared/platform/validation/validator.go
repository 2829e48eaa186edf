package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// rules son las reglas propias que usan los struct tags de los dominios.
var rules = map[string]validator.Func{
	"httpurl": func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
}

// RegisterRule añade una regla; debe llamarse en init() antes del primer Struct().
func RegisterRule(tag string, fn validator.Func) {
	rules[tag] = fn
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Mensajes con el nombre JSON del campo, que es lo que ve el cliente.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		for tag, fn := range rules {
			if err := validate.RegisterValidation(tag, fn); err != nil {
				panic("validation rule registration failed: " + err.Error())
			}
		}
	})
	return validate
}

// Struct valida v y devuelve un error de la categoría ErrInvalid con un mensaje por campo.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return sharedDomain.NewError(sharedDomain.ErrInvalid, strings.Join(msgs, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", fe.Field())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%s can not be more than %s", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s can not be more than %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return "Please add a valid email"
	case "url", "httpurl":
		return "Please use a valid URL with HTTP or HTTPS"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify genera un slug en minúsculas sin acentos: "Devworks Bootcamp!" -> "devworks-bootcamp".
func Slugify(s string) string {
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
