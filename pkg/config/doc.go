// Package config loads component descriptors from crane config files.
//
// A config file is a Starlark script (a Python dialect). One of its global
// variables, "deps" by default, holds a dict mapping component names to their
// attributes:
//
//	deps = {
//	    "libfoo": {"type": "git", "url": "https://example.com/libfoo.git", "branch": "main"},
//	    "tools": {
//	        "type": "solution",
//	        "url": "git@example.com:org/tools.git",
//	        "commit": "9fceb02d0ae598e95dc970b74767f19372d61af8",
//	        "deps_file": ".crane",
//	    },
//	}
//
// Descriptors are returned in declaration order.
package config
