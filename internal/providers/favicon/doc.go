/*
Package favicon resolves tab favicons and fallback titles.

# Overview

Surfaces report favicon candidates through lifecycle events; pages that never
report one are resolved by fetching the page and scanning its markup. Icon
candidates are verified by content sniffing before they reach the store, so
the sidebar never renders a 404 page as an icon.

# Pipeline

 1. Fetch the page through the shared HTTP client (size-capped).
 2. Decode with charset detection, parse with goquery; fall back to an XPath
    scan for markup goquery's selector engine rejects.
 3. Collect `link[rel*=icon]` candidates, else assume /favicon.ico.
 4. Download the icon, sniff the content type, require image/*.
 5. Apply favicon (and title, when the tab has none) via ApplyTabUpdate.

Every failure in this pipeline is logged at debug level, counted, and
otherwise ignored; the UI falls back to a generic glyph.
*/
package favicon
