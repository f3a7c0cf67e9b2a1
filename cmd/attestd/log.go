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

package main

import (
	"os"

	"github.com/decred/slog"
)

// Subsystem tags.
const (
	subsysMain     = "MAIN"
	subsysAttest   = "ATST"
	subsysChain    = "CHAN"
	subsysVerifier = "PRES"
	subsysSigner   = "SIGN"
	subsysAuth     = "AUTH"
	subsysAudit    = "AUDT"
	subsysHTTP     = "HTTP"
)

var backendLog = slog.NewBackend(os.Stdout)

// subsystemLoggers maps each subsystem tag to its logger.
var subsystemLoggers = map[string]slog.Logger{
	subsysMain:     backendLog.Logger(subsysMain),
	subsysAttest:   backendLog.Logger(subsysAttest),
	subsysChain:    backendLog.Logger(subsysChain),
	subsysVerifier: backendLog.Logger(subsysVerifier),
	subsysSigner:   backendLog.Logger(subsysSigner),
	subsysAuth:     backendLog.Logger(subsysAuth),
	subsysAudit:    backendLog.Logger(subsysAudit),
	subsysHTTP:     backendLog.Logger(subsysHTTP),
}

var log = subsystemLoggers[subsysMain]

// setLogLevels sets every subsystem logger to level.
func setLogLevels(level slog.Level) {
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
