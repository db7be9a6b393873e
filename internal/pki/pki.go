// SPDX-License-Identifier: MPL-2.0

package pki

import (
	"context"
	"errors"
	"fmt"

	"envsync-cli/internal/engine"
	"envsync-cli/internal/procrun"
	"envsync-cli/internal/schema"
)

const (
	// OpClientMTLS generates the inbound server and outbound client
	// certificates for mutual TLS.
	OpClientMTLS Operation = "generate_client_side_mtls"
	// OpJWSKeypair generates the JWS signing key pair.
	OpJWSKeypair Operation = "generate_jws_keypair"
)

// Items read by the PKI operations.
var (
	DFSPID                 = engine.ItemRef{GroupID: "dfsp_details", Name: "DFSP ID"}
	DFSPDNSHostNames       = engine.ItemRef{GroupID: "mojaloop_connector_details", Name: "DFSP DNS Host Names"}
	InboundCACertPath      = engine.ItemRef{GroupID: "security", Name: "Inbound CA Certificate Path"}
	InboundServerCertPath  = engine.ItemRef{GroupID: "security", Name: "Inbound Server Certificate Path"}
	InboundServerKeyPath   = engine.ItemRef{GroupID: "security", Name: "Inbound Server Certificate Private Key Path"}
	OutboundClientCertPath = engine.ItemRef{GroupID: "security", Name: "Outbound Client Certificate Path"}
	OutboundClientKeyPath  = engine.ItemRef{GroupID: "security", Name: "Outbound Client Certificate Private Key Path"}
	JWSSigningKeyPath      = engine.ItemRef{GroupID: "non_repudiation", Name: "JWS Signing (private) key path"}
	JWSVerificationKeyPath = engine.ItemRef{GroupID: "non_repudiation", Name: "JWS verification (public) key path"}
)

var (
	// ErrMissingValue is returned when an item the tool needs has no value.
	ErrMissingValue = errors.New("required value is empty")
	// ErrToolFailed is returned when the PKI tool exits non-zero.
	ErrToolFailed = errors.New("pki tool failed")
)

type (
	// Operation is the first argument of the PKI tool.
	Operation string

	// ValueSource resolves item values; *engine.Engine implements it.
	ValueSource interface {
		GetItemValue(groupID, name string) (schema.Value, error)
	}

	// CommandRunner runs argv and streams its output.
	CommandRunner interface {
		Run(ctx context.Context, argv []string, onLine procrun.LineFunc) (int, error)
	}

	// Tool runs the external PKI command.
	Tool struct {
		command []string
		keyName string
		runner  CommandRunner
	}

	// MissingValueError names the item that is empty.
	MissingValueError struct {
		Item engine.ItemRef
	}

	// ToolFailedError carries the exit code of a failed PKI operation.
	ToolFailedError struct {
		Operation Operation
		ExitCode  int
	}
)

// Error implements the error interface.
func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Item, ErrMissingValue)
}

// Unwrap returns ErrMissingValue for errors.Is() compatibility.
func (e *MissingValueError) Unwrap() error { return ErrMissingValue }

// Error implements the error interface.
func (e *ToolFailedError) Error() string {
	return fmt.Sprintf("pki tool %s exited with code %d", e.Operation, e.ExitCode)
}

// Unwrap returns ErrToolFailed for errors.Is() compatibility.
func (e *ToolFailedError) Unwrap() error { return ErrToolFailed }

// NewTool creates a Tool. command is the tool invocation split into argv,
// e.g. ["python3", "-u", "./pkitools.py"].
func NewTool(command []string, keyName string, runner CommandRunner) (*Tool, error) {
	if len(command) == 0 {
		return nil, procrun.ErrEmptyCommand
	}
	return &Tool{command: append([]string(nil), command...), keyName: keyName, runner: runner}, nil
}

// ClientMTLSArgs returns the tool arguments that generate client side mTLS
// artefacts for the current item values.
func ClientMTLSArgs(src ValueSource) ([]string, error) {
	values, err := resolve(src,
		DFSPID,
		InboundCACertPath,
		InboundServerCertPath,
		InboundServerKeyPath,
		OutboundClientCertPath,
		OutboundClientKeyPath,
		DFSPDNSHostNames,
	)
	if err != nil {
		return nil, err
	}
	return append([]string{string(OpClientMTLS)}, values...), nil
}

// JWSKeypairArgs returns the tool arguments that generate a JWS key pair
// named keyName.
func JWSKeypairArgs(src ValueSource, keyName string) ([]string, error) {
	if keyName == "" {
		return nil, fmt.Errorf("key name: %w", ErrMissingValue)
	}
	values, err := resolve(src, JWSSigningKeyPath, JWSVerificationKeyPath)
	if err != nil {
		return nil, err
	}
	return append([]string{string(OpJWSKeypair), keyName}, values...), nil
}

// GenerateClientMTLS runs the client side mTLS operation.
func (t *Tool) GenerateClientMTLS(ctx context.Context, src ValueSource, onLine procrun.LineFunc) error {
	args, err := ClientMTLSArgs(src)
	if err != nil {
		return err
	}
	return t.run(ctx, OpClientMTLS, args, onLine)
}

// GenerateJWSKeypair runs the JWS key pair operation.
func (t *Tool) GenerateJWSKeypair(ctx context.Context, src ValueSource, onLine procrun.LineFunc) error {
	args, err := JWSKeypairArgs(src, t.keyName)
	if err != nil {
		return err
	}
	return t.run(ctx, OpJWSKeypair, args, onLine)
}

func (t *Tool) run(ctx context.Context, op Operation, args []string, onLine procrun.LineFunc) error {
	argv := append(append([]string(nil), t.command...), args...)
	code, err := t.runner.Run(ctx, argv, onLine)
	if err != nil {
		return fmt.Errorf("pki tool %s: %w", op, err)
	}
	if code != 0 {
		return &ToolFailedError{Operation: op, ExitCode: code}
	}
	return nil
}

func resolve(src ValueSource, refs ...engine.ItemRef) ([]string, error) {
	out := make([]string, len(refs))
	for i, ref := range refs {
		v, err := src.GetItemValue(ref.GroupID, ref.Name)
		if err != nil {
			return nil, err
		}
		if v.String() == "" {
			return nil, &MissingValueError{Item: ref}
		}
		out[i] = v.String()
	}
	return out, nil
}
