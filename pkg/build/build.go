/*
Copyright 2020 The cert-manager Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package build carries the CLI's own invoked-as name through a
// context.Context, so help text and error messages read correctly
// whether the binary was built as x509chainctl or renamed by a caller.
package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"text/template"
)

var defaultCtlName string = "x509chainctl"

func DetectCtlName() string {
	return filepath.Base(os.Args[0])
}

// contextNameKey is how we find the ctl name in a context.Context.
type contextNameKey struct{}

func WithCtlName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextNameKey{}, name)
}

func Name(ctx context.Context) string {
	name, ok := ctx.Value(contextNameKey{}).(string)
	if !ok || name == "" {
		return defaultCtlName
	}
	return name
}

// WithTemplate returns a string that has the build name templated out with
// the configured build name. Build name templates on '{{ .BuildName }}'.
func WithTemplate(ctx context.Context, str string) string {
	buildName := Name(ctx)
	tmpl := template.Must(template.New("build-name").Parse(str))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ BuildName string }{buildName}); err != nil {
		panic(err)
	}
	return buf.String()
}
