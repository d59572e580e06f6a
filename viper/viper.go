/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package viper is a thin, logged wrapper around spf13/viper used to load the
// server's construction parameters (listen_on, backlog, keep_alive, ...) from
// file, environment, or both.
package viper

import (
	"strings"

	"github.com/spf13/viper"

	liberr "github.com/sabouaram/pyre/errors"
	liblog "github.com/sabouaram/pyre/logger"
)

type Config interface {
	// SetConfigFile points the loader at an explicit path; extension selects the decoder.
	SetConfigFile(path string)

	// SetEnvPrefix enables automatic environment binding under the given prefix,
	// mapping "." and "-" in key names to "_".
	SetEnvPrefix(prefix string)

	// ReadInConfig loads the configured file, if any, into memory.
	ReadInConfig() liberr.Error

	// Unmarshal decodes the loaded configuration into out (a pointer to a
	// mapstructure-tagged struct).
	Unmarshal(out interface{}) liberr.Error

	// Viper exposes the underlying *viper.Viper for callers needing the raw API.
	Viper() *viper.Viper
}

type cfg struct {
	v *viper.Viper
}

// New returns a Config with sane defaults: "." key delimiter, automatic env enabled.
func New() Config {
	v := viper.New()
	v.AutomaticEnv()
	return &cfg{v: v}
}

func (c *cfg) SetConfigFile(path string) {
	c.v.SetConfigFile(path)
}

func (c *cfg) SetEnvPrefix(prefix string) {
	c.v.SetEnvPrefix(prefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (c *cfg) ReadInConfig() liberr.Error {
	if err := c.v.ReadInConfig(); err != nil {
		liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "reading config file", err)
		return ErrorConfigRead.Error(err)
	}
	return nil
}

func (c *cfg) Unmarshal(out interface{}) liberr.Error {
	if err := c.v.Unmarshal(out); err != nil {
		return ErrorConfigUnmarshal.Error(err)
	}
	return nil
}

func (c *cfg) Viper() *viper.Viper {
	return c.v
}
