// Package middleware wires the request authorization policy into the
// HTTP stack. The gate resolves the caller's session, builds a fresh
// per-request authorization context, evaluates the policy, and either
// rejects the request or forwards it with the context attached.
package middleware
