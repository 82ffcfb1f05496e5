// Package client contains the client-side transport and local storage
// bootstrap for FailVault.
//
// # Overview
//
//  1. Client is the contract the rest of the CLI uses to reach the catalog
//     server: Ping, ListRecords, CreateRecord, DeleteRecord, admin sign-in and
//     metadata upload slots.
//  2. GRPCClient implements it over gRPC, attaches the admin access token
//     when one is held, and maps status codes to sentinel errors.
//  3. InitDatabase opens the device-local SQLite file and applies the
//     embedded goose migrations.
//
// # Error Handling
//
// Callers match with errors.Is: ErrUnavailable, ErrUnauthorized,
// common.ErrorNotFound and common.ErrorValidation.
package client
