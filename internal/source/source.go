// Package source opens the bytes a Mach-O is parsed from: a local file or
// a remote one fetched lazily with HTTP range requests.
package source

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/ranger"
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpproxy"
)

// RemoteConfig is the remote reader config
type RemoteConfig struct {
	Proxy     string
	Insecure  bool
	UserAgent string
}

// A Source is a positioned reader with a known size.
type Source struct {
	io.ReaderAt
	Name string
	Size int64

	closer io.Closer
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// IsRemote reports whether name should be fetched over HTTP.
func IsRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// Open opens name as a local path or, for http(s) URLs, as a remote file
// read on demand. Only the ranges the parser asks for are downloaded.
func Open(name string, conf *RemoteConfig) (*Source, error) {
	if IsRemote(name) {
		return OpenRemote(name, conf)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to stat %s", name)
	}
	if fi.IsDir() {
		f.Close()
		return nil, errors.Errorf("%s is a directory", name)
	}
	return &Source{ReaderAt: f, Name: name, Size: fi.Size(), closer: f}, nil
}

// OpenRemote returns a reader over the file at rawURL backed by range requests.
func OpenRemote(rawURL string, conf *RemoteConfig) (*Source, error) {
	if conf == nil {
		conf = &RemoteConfig{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse url")
	}

	reader, err := ranger.NewReader(&ranger.HTTPRanger{
		URL:       u,
		UserAgent: conf.UserAgent,
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:           GetProxy(conf.Proxy),
				TLSClientConfig: &tls.Config{InsecureSkipVerify: conf.Insecure},
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ranger reader")
	}

	length, err := reader.Length()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reader length")
	}
	log.WithFields(log.Fields{
		"url":  u.Redacted(),
		"size": length,
	}).Debug("opened remote source")

	return &Source{ReaderAt: reader, Name: rawURL, Size: length}, nil
}

// GetProxy returns the proxy func for an http.Transport. An explicit proxy
// wins; otherwise the environment is consulted.
func GetProxy(proxy string) func(*http.Request) (*url.URL, error) {
	if len(proxy) > 0 {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			log.WithError(err).Error("bad proxy url")
			return http.ProxyFromEnvironment
		}
		log.Debugf("proxy set to: %s", proxyURL)
		return http.ProxyURL(proxyURL)
	}

	conf := httpproxy.FromEnvironment()
	if len(conf.HTTPProxy) > 0 || len(conf.HTTPSProxy) > 0 {
		log.WithFields(log.Fields{
			"http_proxy":  conf.HTTPProxy,
			"https_proxy": conf.HTTPSProxy,
			"no_proxy":    conf.NoProxy,
		}).Debugf("proxy info from environment")
	}

	return http.ProxyFromEnvironment
}
