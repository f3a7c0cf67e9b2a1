// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-attest.
//
// sage-attest is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-attest is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-attest.  If not, see <https://www.gnu.org/licenses/>.

// Package version provides version information for sage-attest.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/sage-x-project/sage-attest/pkg/version.Version=..."
var (
	// Version is the current version of sage-attest
	Version = "1.0.0-dev"

	// Commit is the git commit the binary was built from
	Commit = "unknown"

	// BuildDate is the build time in RFC 3339
	BuildDate = "unknown"
)

const (
	// APIVersion is the HTTP API version served under /api/v1
	APIVersion = "v1"

	// PresentationFormat is the presentation artifact version accepted
	PresentationFormat = 1
)

// Info contains detailed version information
type Info struct {
	Version            string
	Commit             string
	BuildDate          string
	APIVersion         string
	PresentationFormat int
	GoVersion          string
}

// Get returns detailed version information
func Get() Info {
	return Info{
		Version:            Version,
		Commit:             Commit,
		BuildDate:          BuildDate,
		APIVersion:         APIVersion,
		PresentationFormat: PresentationFormat,
		GoVersion:          runtime.Version(),
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("sage-attest %s (commit %s, built %s, api %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.APIVersion, i.GoVersion)
}

// String returns the one-line summary of the running binary
func String() string {
	return Get().String()
}
