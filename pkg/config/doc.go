/*
Package config loads the docfetch configuration.

	            +-------------+
	            |   Config    |
	            +------+------+
	                   |
	   +--------+------+-------+--------+
	   |        |              |        |
	+--+--+  +--+--+       +---+--+  +--+--+
	| YAML|  | JSON|       | TOML |  | HCL |
	+-----+  +-----+       +------+  +-----+

🎯 Purpose:
- Describes which GitHub hosts, plain URL hosts and checkout roots are available
- Resolves tokens from the environment or from files
- Validates and normalizes everything once at startup

🔄 Flow:
1. FindConfigFile locates a .docfetch.* file (optional)
2. Load picks a Parser by extension
3. ResolveSecrets expands ${ENV} and file-path tokens
4. Validate fills defaults (github.com is always present) and rejects bad hosts

The resulting *Config is passed down explicitly. Nothing in this package keeps global
state besides the parser registry.

🔍 Example:

	cfg, err := config.Load(ctx, ".docfetch.yaml")
	if err != nil {
		return err
	}
	fmt.Println(cfg.Checkout.DefaultBranch)
*/
package config
