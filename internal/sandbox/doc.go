/*
Package sandbox provides isolated execution of sandbox documents.

# Overview

A Runtime plays the part of a browser frame for a Render Target Reference:
it decodes the data URI, parses the page, and runs its scripts inside a goja
JavaScript VM. Each Runtime has:

  - Its own global scope (a fresh VM per load, recreated by Reset)
  - A DOM proxy (document.createElement, document.body, textContent, ...)
  - A captured host console (console.log/info/warn/error)
  - Module import resolution against registered instantiators
  - CPU limits (execution timeout, interrupt on context cancellation)

# Loading a Page

 1. Fetch decodes a data: URI into markup
 2. ParsePage builds the DOM tree and the ordered script list
 3. Runtime.Load runs classic scripts in document order, then module
    scripts (deferred), resolving their import statements first
 4. Result.Output holds the visible body text as lines

An uncaught error in one script is recorded in Result.Errors and the next
script still runs, matching how a browser reports errors to its devtools
console. Only timeouts and cancellation abort a load.

# Security Model

Sandboxed code cannot:
  - Load Node.js style modules (require, module, exports and process are removed)
  - Reach the network: import specifiers resolve only against Config.Modules
  - Schedule timers (setTimeout and setInterval are no-ops)
  - Run past Config.Timeout when one is set

# Usage Example

	page, err := sandbox.Open(string(ref))
	if err != nil {
		return err
	}
	rt, err := sandbox.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Load(ctx, page)
*/
package sandbox
