// Package template loads and validates the stage templates workflows are
// created from. A built-in five-stage sample development template ships
// embedded in the binary; deployments can point the config at a custom TOML
// template instead.
package template
