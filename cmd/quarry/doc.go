// Command quarry provisions binary model artifacts for a ComfyUI install:
// it fetches them over HTTP with resume support, verifies digests, and
// reports install state against a YAML manifest.
package main
