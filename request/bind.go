/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package request

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/sabouaram/pyre/errors"
)

var validate = libval.New()

// BindQuery decodes the request's query string into dst (a pointer to a
// struct whose fields carry a `query:"name"` tag) and runs struct-tag
// validation over the result, in the same report-every-field-violation
// style the rest of the module uses for config validation.
func (r *Request) BindQuery(dst interface{}) liberr.Error {
	values, err := url.ParseQuery(r.RawQuery)
	if err != nil {
		return ErrorValidation.Error(err)
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return ErrorValidation.Error(fmt.Errorf("BindQuery requires a pointer to struct"))
	}

	elem := rv.Elem()
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("query")
		if tag == "" {
			continue
		}
		raw := values.Get(tag)
		if raw == "" {
			continue
		}
		if err := setField(elem.Field(i), raw); err != nil {
			return ErrorValidation.Error(err)
		}
	}

	return validateStruct(dst)
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s for query binding", f.Kind())
	}
	return nil
}

func validateStruct(dst interface{}) liberr.Error {
	err := ErrorValidation.Error(nil)

	if er := validate.Struct(dst); er != nil {
		if e, ok := er.(*libval.InvalidValidationError); ok {
			err.Add(e)
		}
		if ve, ok := er.(libval.ValidationErrors); ok {
			for _, e := range ve {
				err.Add(fmt.Errorf("field '%s' fails constraint '%s'", e.StructNamespace(), e.ActualTag()))
			}
		}
	}

	if err.HasParent() {
		return err
	}
	return nil
}
