/*
Package http exposes calculator sessions over a small REST API with a server-sent
event stream of state diffs.

Every request to a documented route is checked against the embedded OpenAPI
contract (api/openapi.yaml) before it reaches a handler. Sessions live in a
session.Manager, so the same handler can be backed by memory or Redis.
*/
package http
