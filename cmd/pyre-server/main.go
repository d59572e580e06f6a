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

// Command pyre-server runs a small demo application on top of the runtime:
// a /hello/{name} greeter and a /boom endpoint that always raises, useful
// for exercising the 200/404/500 paths end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/google/uuid"

	"github.com/sabouaram/pyre/application"
	"github.com/sabouaram/pyre/endpoint"
	"github.com/sabouaram/pyre/executor"
	"github.com/sabouaram/pyre/httpserver"
	"github.com/sabouaram/pyre/logger"
	"github.com/sabouaram/pyre/request"
	"github.com/sabouaram/pyre/response"
	"github.com/sabouaram/pyre/session"
	liberr "github.com/sabouaram/pyre/errors"
	libver "github.com/sabouaram/pyre/version"
	libviper "github.com/sabouaram/pyre/viper"
)

// marker anchors libver.NewVersion's package-path reflection to this binary.
type marker struct{}

// buildVersion describes this binary for --version output and the startup
// Go-toolchain guard; build/release/buildTime would normally be stamped in
// by -ldflags at compile time.
func buildVersion() libver.Version {
	return libver.NewVersion(
		libver.License_MIT,
		"pyre-server",
		"non-blocking HTTP/1.1 SGI server runtime",
		"",
		"dev",
		"0.1.0",
		"sabouaram",
		"PYRE",
		marker{},
		0,
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.ErrorLevel.LogErrorCtxf(logger.NilLevel, "pyre-server exited", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		listenOn   string
		backlog    int
		debug      bool
	)

	v := buildVersion()

	cmd := &cobra.Command{
		Use:     "pyre-server",
		Short:   "Run the demo SGI application",
		Version: v.GetInfo(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.CheckGo("1.21", ">="); err != nil {
				return err
			}

			cfg := httpserver.DefaultConfig()
			cfg.ListenOn = []string{listenOn}
			cfg.Backlog = backlog
			cfg.Debug = debug

			if configFile != "" {
				vp := libviper.New()
				vp.SetConfigFile(configFile)
				if err := vp.ReadInConfig(); err != nil {
					return err
				}
				if err := vp.Unmarshal(&cfg); err != nil {
					return err
				}
			}

			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "optional config file (yaml/json/toml) overriding the flags below")
	flags.StringVar(&listenOn, "listen", "127.0.0.1:8080", "address to bind")
	flags.IntVar(&backlog, "backlog", 1024, "accept backlog")
	flags.BoolVar(&debug, "debug", false, "enable periodic connection-count logging")

	return cmd
}

func run(cfg httpserver.Config) error {
	app := demoApplication()

	exec, err := executor.NewEventLoop()
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg, exec, app.Serve)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoLevel.Logf("pyre-server listening on %v", cfg.ListenOn)
	return srv.RunForever(ctx)
}

func demoApplication() *application.Application {
	serializer, err := session.NewSerializerFromEnv()
	if err != nil {
		logger.WarnLevel.LogErrorCtxf(logger.NilLevel, "SECURE_KEY not set, falling back to a throwaway key", err)
		serializer = session.NewSerializer("pyre-server-demo")
	}

	app := application.New(serializer)
	app.AddBlueprint(demoBlueprint())
	return app
}

func demoBlueprint() *endpoint.Blueprint {
	bp := endpoint.NewBlueprint("demo")

	hello, err := endpoint.New("/hello/{name:string}", func(req *request.Request, args []interface{}) (response.Response, error) {
		name, _ := args[0].(string)
		traceID, _ := req.Attr("trace-id")
		logger.InfoLevel.Logf("handling hello request, trace-id=%v", traceID)
		return response.Text(200, fmt.Sprintf("hello, %s!", name)), nil
	})
	if err != nil {
		panic(err)
	}
	hello.Before(func(req *request.Request) (*request.Request, error) {
		req.SetAttr("trace-id", uuid.NewString())
		return req, nil
	})
	bp.Add(hello)

	boom, err := endpoint.New("/boom", func(req *request.Request, args []interface{}) (response.Response, error) {
		return response.Response{}, liberr.New(0, "deliberately raised for the demo")
	})
	if err != nil {
		panic(err)
	}
	bp.Add(boom)

	return bp
}
