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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sage-x-project/sage-attest/pkg/attestation"
	"github.com/sage-x-project/sage-attest/pkg/audit"
	"github.com/sage-x-project/sage-attest/pkg/auth"
	"github.com/sage-x-project/sage-attest/pkg/chain"
	"github.com/sage-x-project/sage-attest/pkg/config"
	"github.com/sage-x-project/sage-attest/pkg/server"
	"github.com/sage-x-project/sage-attest/pkg/signer"
	"github.com/sage-x-project/sage-attest/pkg/transport"
	"github.com/sage-x-project/sage-attest/pkg/verifier"
	"github.com/sage-x-project/sage-attest/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "attestd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("ATTESTD_CONFIG"), "path to a YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLogLevels(cfg.LogLevel())
	log.Infof("Starting %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, ":"+strconv.Itoa(cfg.Server.Port))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infof("Shutdown complete")
	return nil
}

// newServer wires every component from cfg.
func newServer(ctx context.Context, cfg *config.Config) (*server.Server, func(), error) {
	sig, err := signer.NewDefaultAttestationSignerFromHex(cfg.Witness.PrivateKey,
		signer.WithLogger(subsystemLoggers[subsysSigner]))
	if err != nil {
		return nil, nil, fmt.Errorf("load witness key: %w", err)
	}
	log.Infof("Witness address: %s", sig.Address().Hex())
	log.Infof("Chain ID: %d, verifier contract: %s", cfg.Witness.ChainID, cfg.VerifierContractAddress().Hex())

	roots, err := verifier.ParseTrustRoots(cfg.Verifier.NotaryTrustRoots)
	if err != nil {
		return nil, nil, fmt.Errorf("load notary trust roots: %w", err)
	}
	log.Infof("Trusting %d notaries, allowed servers: %v", roots.Len(), cfg.Verifier.AllowedServers)
	presentations := verifier.NewDefaultPresentationVerifier(roots,
		verifier.WithLogger(subsystemLoggers[subsysVerifier]))

	opts := []attestation.Option{attestation.WithLogger(subsystemLoggers[subsysAttest])}
	if cfg.ChainValidationEnabled() {
		schema, err := chain.ParseSchema(cfg.Chain.IntentSchema)
		if err != nil {
			return nil, nil, err
		}
		rpc := transport.NewHTTPTransport(cfg.Chain.RPCURL,
			transport.WithTimeout(cfg.Chain.RPCTimeout),
			transport.WithLogger(subsystemLoggers[subsysChain]))
		intents := chain.NewClient(rpc, cfg.OffRampContractAddress(), schema,
			chain.WithFiatUnits(cfg.FiatUnits()),
			chain.WithLogger(subsystemLoggers[subsysChain]))
		opts = append(opts, attestation.WithIntentValidator(intents))
		log.Infof("On-chain intent validation enabled (%s schema)", schema.Name())
		log.Infof("  RPC URL: %s", cfg.Chain.RPCURL)
		log.Infof("  Contract: %s", cfg.OffRampContractAddress().Hex())
	} else {
		log.Warnf("On-chain validation DISABLED - set %s and %s to enable", config.EnvRPCURL, config.EnvOffRampContract)
	}
	svc := attestation.NewService(presentations, sig, cfg.SigningDomain(), cfg.Verifier.AllowedServers, opts...)

	keys, err := cfg.SolverKeys()
	if err != nil {
		return nil, nil, err
	}
	solverAuth := auth.NewSolverAuth(keys, subsystemLoggers[subsysAuth])
	if solverAuth.Enabled() {
		log.Infof("Solver authentication enabled (%d solvers)", solverAuth.SolverCount())
	} else {
		log.Warnf("Solver authentication DISABLED - set %s to enable", config.EnvSolverAPIKeys)
	}
	limiter := auth.NewRateLimiter(cfg.Auth.RateLimitPerMinute)

	var sinks []audit.Sink
	cleanup := func() {}
	if cfg.Audit.LogPath != "" {
		fileSink, err := audit.NewFileSink(cfg.Audit.LogPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileSink)
		cleanup = func() {
			if err := fileSink.Close(); err != nil {
				log.Errorf("Failed to close audit log: %v", err)
			}
		}
		log.Infof("Audit log: %s", fileSink.Path())
	}
	if cfg.Audit.DatabaseURL != "" {
		dbSink, err := audit.NewPostgresSink(ctx, cfg.Audit.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		sinks = append(sinks, dbSink)
		closeFile := cleanup
		cleanup = func() {
			closeFile()
			dbSink.Close()
		}
		log.Infof("Audit database enabled")
	}
	recorder := audit.NewRecorder(subsystemLoggers[subsysAudit], sinks...)

	srv := server.New(svc, solverAuth, limiter,
		server.WithRecorder(recorder),
		server.WithLogger(subsystemLoggers[subsysHTTP]))
	return srv, cleanup, nil
}
