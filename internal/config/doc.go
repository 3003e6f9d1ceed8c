// Package config provides configuration loading, merging, and validation
// facilities for the field-keeper server and device agent.
//
// Configuration is assembled from multiple sources; the first source that
// sets a field wins:
//  1. Environment variables (a .env file in the working directory is loaded
//     into the environment first)
//  2. Command-line flags (server only)
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the server and
// [GetClientConfig] for the device agent.
package config
