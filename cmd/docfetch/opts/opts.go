// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opts

import (
	"github.com/walteh/docfetch/pkg/checkout"
	"github.com/walteh/docfetch/pkg/config"
	"github.com/walteh/docfetch/pkg/log"
	"github.com/walteh/docfetch/pkg/prepare"
	"github.com/walteh/docfetch/pkg/publish"
	"github.com/walteh/docfetch/pkg/reading"
)

// RootOpts contains shared dependencies used by all commands. It is filled in
// after flags are parsed, so commands must only read it inside RunE.
type RootOpts struct {
	Config    *config.Config
	Reader    reading.Reader
	Checkout  *checkout.Manager
	Preparer  *prepare.Directory
	Publisher *publish.Publisher // nil when no publish block is configured
	Console   *log.Logger
}
