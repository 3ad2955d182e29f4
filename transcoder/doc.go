// Package transcoder adapts material binaries to the host's layout.
//
// The host version is not known up front. The first time it is needed the
// transcoder reads a reference material the host always ships (UIText) and
// records the layout it parses under. That happens once per Transcoder;
// failures are remembered too and disable transcoding for the process.
//
//	t := transcoder.New(assetManager)
//	if out, ok := t.Transcode(payload); ok {
//	    payload = out
//	}
package transcoder
