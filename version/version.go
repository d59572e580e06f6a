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

// Package version carries build-time identification (package name, release,
// build hash, author, license) for a binary and exposes a runtime Go-version
// constraint check, so a server's `--version` output and startup guard share
// one source of truth.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	hcver "github.com/hashicorp/go-version"

	liberr "github.com/sabouaram/pyre/errors"
)

type Version interface {
	GetPackage() string
	GetDescription() string
	GetTime() time.Time
	GetDate() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetAppId() string
	GetRootPackagePath() string

	GetLicenseName() string
	GetLicenseBoiler() string
	GetLicenseFull() string
	GetLicenseLegal() string

	GetHeader() string
	GetInfo() string

	CheckGo(constraint string, operator string) liberr.Error
}

type version struct {
	lic     License
	pkg     string
	desc    string
	tim     time.Time
	build   string
	release string
	author  string
	prefix  string
	rootPkg string
}

// NewVersion builds a Version descriptor. buildTime is parsed with
// time.RFC3339; an unparsable value falls back to time.Now(). pkg of ""
// or "noname" is replaced by the package path of ref, as seen through
// reflection; numSubPackage trims that many trailing path segments to
// compute GetRootPackagePath.
func NewVersion(lic License, pkg, description, buildTime, build, release, author, prefix string, ref interface{}, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, buildTime)
	if err != nil {
		t = time.Now()
	}

	rt := reflect.TypeOf(ref)
	pkgPath := ""
	if rt != nil {
		pkgPath = rt.PkgPath()
	}

	if pkg == "" || pkg == "noname" {
		p := pkgPath
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			pkg = p[idx+1:]
		} else {
			pkg = p
		}
		if pkg == "" {
			pkg = "noname"
		}
	}

	root := pkgPath
	for i := 0; i < numSubPackage; i++ {
		if idx := strings.LastIndex(root, "/"); idx >= 0 {
			root = root[:idx]
		}
	}

	return &version{
		lic:     lic,
		pkg:     pkg,
		desc:    description,
		tim:     t,
		build:   build,
		release: release,
		author:  author,
		prefix:  prefix,
		rootPkg: root,
	}
}

func (v *version) GetPackage() string     { return v.pkg }
func (v *version) GetDescription() string { return v.desc }
func (v *version) GetTime() time.Time     { return v.tim }
func (v *version) GetDate() string        { return v.tim.Format(time.RFC1123) }
func (v *version) GetBuild() string       { return v.build }
func (v *version) GetRelease() string     { return v.release }
func (v *version) GetAuthor() string      { return v.author }
func (v *version) GetPrefix() string      { return v.prefix }

func (v *version) GetAppId() string {
	if v.prefix == "" {
		return v.pkg
	}
	return v.prefix + "-" + v.pkg
}

func (v *version) GetRootPackagePath() string { return v.rootPkg }

func (v *version) GetLicenseName() string   { return v.lic.Name() }
func (v *version) GetLicenseBoiler() string { return v.lic.Boiler(v.author, v.tim.Format("2006")) }
func (v *version) GetLicenseFull() string   { return v.lic.Full(v.author, v.tim.Format("2006")) }
func (v *version) GetLicenseLegal() string  { return v.lic.Legal(v.author, v.tim.Format("2006")) }

func (v *version) GetHeader() string {
	return fmt.Sprintf("%s %s (%s)", v.GetAppId(), v.release, v.build)
}

func (v *version) GetInfo() string {
	return fmt.Sprintf("%s - %s\nrelease: %s\nbuild: %s\nbuilt: %s\nauthor: %s\n%s",
		v.GetAppId(), v.desc, v.release, v.build, v.GetDate(), v.author, v.GetLicenseLegal())
}

// CheckGo validates the running Go toolchain's version against constraint
// combined with operator (">=", ">", "<=", "<", "==", "~>"). hashicorp/go-version
// constraint syntax is used directly except "==" and "~>" are translated to
// its "=" and "~>" equivalents.
func (v *version) CheckGo(constraint string, operator string) liberr.Error {
	if constraint == "" || operator == "" {
		return ErrorParamEmpty.Error(nil)
	}

	op := operator
	if op == "==" {
		op = "="
	}

	switch op {
	case ">=", ">", "<=", "<", "=", "~>":
	default:
		return ErrorGoVersionInit.Error(nil)
	}

	c, err := hcver.NewConstraint(op + " " + constraint)
	if err != nil {
		return ErrorGoVersionInit.Error(err)
	}

	rv := strings.TrimPrefix(runtime.Version(), "go")
	rv = strings.SplitN(rv, " ", 2)[0]

	gv, err := hcver.NewVersion(rv)
	if err != nil {
		return ErrorGoVersionRuntime.Error(err)
	}

	if !c.Check(gv) {
		return ErrorGoVersionConstraint.Error(nil)
	}

	return nil
}
