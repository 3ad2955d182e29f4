// Package dispatch decides what the host gets back when it opens an asset.
//
// OnOpen runs after the native open. It walks an ordered rule table and the
// first enabled rule that matches the path wins:
//
//   - Block rules close the native handle and return handle.Null, so the
//     host sees the asset as missing.
//   - Static rules install a fixed payload from the catalog. Material
//     payloads are transcoded to the host version first.
//   - The Resolve rule rewrites the path through a redirect table and serves
//     the file from a resource pack if one has it.
//
// Installed content is registered under the original handle; the vio facade
// serves it from then on. Anything else passes through untouched. Feature
// toggles are read on every call.
//
// Every decision is logged at info level with the rule name and the BLAKE3
// digest of what was installed.
package dispatch
