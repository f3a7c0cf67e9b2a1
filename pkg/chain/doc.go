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

// Package chain reads off-ramp intent state over JSON-RPC and enforces the
// settlement rules an intent must satisfy before a payment can be attested.
//
// Contract calls are built with pkg/abi; the layout of the returned intent
// record is described by an IntentSchema chosen by configuration. Intent
// state is fetched fresh on every call and never cached.
package chain
