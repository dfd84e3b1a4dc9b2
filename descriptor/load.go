package descriptor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-getter"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/internal/httpclient"
	"github.com/teranos/callgen/logger"
)

// FetchTimeout bounds a single HTTP descriptor download.
const FetchTimeout = 60 * time.Second

var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// Load reads and validates a descriptor file. The extension picks the
// syntax: .yaml/.yml, .toml or .json.
func Load(path string) (*InterfaceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read descriptor %s", path)
	}
	d, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "descriptor %s", path)
	}
	return d, nil
}

// Parse decodes a descriptor in the syntax named by ext and validates it.
// Unknown keys are rejected in every syntax.
func Parse(data []byte, ext string) (*InterfaceDescriptor, error) {
	var d InterfaceDescriptor
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, errors.MarkAs(err, errors.InvalidDescriptor, "parse yaml")
		}
	case "toml":
		md, err := toml.Decode(string(data), &d)
		if err != nil {
			return nil, errors.MarkAs(err, errors.InvalidDescriptor, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.MarkAsf(nil, errors.InvalidDescriptor, "unknown toml keys: %v", undecoded)
		}
	case "json":
		if err := strictJSON.Unmarshal(data, &d); err != nil {
			return nil, errors.MarkAs(err, errors.InvalidDescriptor, "parse json")
		}
	default:
		return nil, errors.WithHint(
			errors.MarkAsf(nil, errors.InvalidDescriptor, "unsupported descriptor extension %q", ext),
			"use .yaml, .yml, .toml or .json")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// IsRemote reports whether src needs fetching, i.e. go-getter detects a
// non-file source.
func IsRemote(src string) bool {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(detected, "file://")
}

// Fetch resolves src (a local path, https URL, git:: or s3:: source) to a
// local descriptor file under dir and returns its path. Local paths are
// returned unchanged.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}

	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return "", errors.Wrapf(err, "detect descriptor source %s", src)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create fetch dir %s", dir)
	}
	name := filepath.Base(strings.SplitN(src, "?", 2)[0])
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	dst := filepath.Join(dir, name)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    getter.ClientModeFile,
		Getters: fetchGetters(),
	}
	logger.Infow("Fetching descriptor",
		logger.FieldPath, src,
		"destination", dst)
	if err := client.Get(); err != nil {
		return "", errors.Wrapf(err, "fetch descriptor %s", src)
	}
	return dst, nil
}

// fetchGetters is go-getter's default set with HTTP routed through the
// guarded client.
func fetchGetters() map[string]getter.Getter {
	client := httpclient.New(httpclient.Options{Timeout: FetchTimeout})
	gs := make(map[string]getter.Getter, len(getter.Getters))
	for k, g := range getter.Getters {
		gs[k] = g
	}
	gs["http"] = &getter.HttpGetter{Client: client, Netrc: true}
	gs["https"] = &getter.HttpGetter{Client: client, Netrc: true}
	return gs
}
