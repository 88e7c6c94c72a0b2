// Comet is a local-first CLI that watches a git working tree and
// generates commit messages and code reviews with LLM providers.
//
// It collects pending changes (staged, unstaged, untracked), packs them
// into bounded chunks, and sends each chunk to a local or remote model,
// caching results by content so an unchanged tree is never re-analyzed.
//
// Usage:
//
//	comet analyze              # analyze pending changes once
//	comet analyze --review     # also review each chunk
//	comet watch                # analyze automatically as files settle
//	comet models               # list installed Ollama models
//	comet cache show           # inspect the result cache
//	comet hook install         # pre-fill commit messages via git hook
//
// See https://github.com/dshills/comet for full documentation.
package main
