// Package proxy renders shell snippets that set or clear the proxy
// environment and git's proxy config. The caller evals the output; nothing
// here touches the environment itself.
package proxy

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"mvdan.cc/sh/v3/syntax"

	"shellkit/internal/config"
)

// Usage is printed with argument errors.
const Usage = `usage: proxy set [URL] [PORT]
       proxy set [-p|--port PORT] [-u|--url URL] [-s|--scheme SCHEME] [-n|--no-proxy LIST]
examples: proxy set 8080 | proxy set -p 8080 | proxy set --url http://proxy.example.com | proxy set -s socks5 -p 7890`

var (
	proxyVars   = []string{"http_proxy", "HTTP_PROXY", "https_proxy", "HTTPS_PROXY", "all_proxy", "ALL_PROXY"}
	noProxyVars = []string{"no_proxy", "NO_PROXY"}
	gitKeys     = []string{"http.proxy", "https.proxy"}
)

var digits = regexp.MustCompile(`^[0-9]+$`)

// ErrUsage wraps every argument error so callers can print Usage.
var ErrUsage = errors.New("invalid arguments")

// Options is the resolved proxy setting.
type Options struct {
	Scheme  string
	URL     string
	Port    int
	NoProxy string
}

// Proxy is the value exported to the *_proxy variables.
func (o Options) Proxy() string {
	return o.URL + ":" + strconv.Itoa(o.Port)
}

// ParseSet parses `set` arguments on top of defaults. Positionals are
// applied after flags: digits set the port, anything with "://" the URL.
func ParseSet(args []string, defaults config.ProxyConfig) (Options, error) {
	flags := pflag.NewFlagSet("proxy set", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringP("port", "p", "", "proxy port")
	flags.StringP("scheme", "s", "", "scheme used for the default URL")
	flags.StringP("url", "u", "", "proxy URL without port")
	flags.StringP("no-proxy", "n", "", "comma separated hosts that bypass the proxy")

	if err := flags.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	opts := Options{
		Scheme:  defaults.Scheme,
		Port:    defaults.Port,
		NoProxy: defaults.NoProxy,
	}
	if v, _ := flags.GetString("scheme"); v != "" {
		opts.Scheme = v
	}
	if opts.Scheme == "" {
		opts.Scheme = "http"
	}
	opts.URL = opts.Scheme + "://" + defaults.Host
	if v, _ := flags.GetString("url"); v != "" {
		opts.URL = v
	}
	if flags.Changed("port") {
		v, _ := flags.GetString("port")
		port, err := parsePort(v)
		if err != nil {
			return Options{}, fmt.Errorf("%w: bad port: %s", ErrUsage, v)
		}
		opts.Port = port
	}
	if v, _ := flags.GetString("no-proxy"); v != "" {
		opts.NoProxy = v
	}

	for _, arg := range flags.Args() {
		switch {
		case digits.MatchString(arg):
			port, err := parsePort(arg)
			if err != nil {
				return Options{}, fmt.Errorf("%w: bad port: %s", ErrUsage, arg)
			}
			opts.Port = port
		case strings.Contains(arg, "://"):
			opts.URL = arg
		default:
			return Options{}, fmt.Errorf("%w: unknown argument: %s", ErrUsage, arg)
		}
	}
	return opts, nil
}

func parsePort(s string) (int, error) {
	if !digits.MatchString(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

// script accumulates shell lines, quoting interpolated values.
type script struct {
	lines []string
	err   error
}

func (s *script) quote(v string) string {
	q, err := syntax.Quote(v, syntax.LangBash)
	if err != nil && s.err == nil {
		s.err = err
	}
	return q
}

func (s *script) add(format string, a ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, a...))
}

func (s *script) echo(text string) {
	if text == "" {
		s.add("echo")
		return
	}
	s.add("echo %s", s.quote(text))
}

func (s *script) writeTo(w io.Writer) error {
	if s.err != nil {
		return fmt.Errorf("quote value: %w", s.err)
	}
	_, err := io.WriteString(w, strings.Join(s.lines, "\n")+"\n")
	return err
}

// WriteSet writes the snippet exporting opts.
func WriteSet(w io.Writer, opts Options) error {
	proxy := opts.Proxy()
	s := &script{}

	s.echo("🔧 setting proxy: " + proxy)
	s.echo("🚫 bypassing: " + opts.NoProxy)
	for _, name := range proxyVars {
		s.add("export %s=%s", name, s.quote(proxy))
	}
	for _, name := range noProxyVars {
		s.add("export %s=%s", name, s.quote(opts.NoProxy))
	}
	for _, key := range gitKeys {
		s.add("git config --global %s %s", key, s.quote(proxy))
	}

	s.echo("")
	s.echo("🔑 environment set:")
	for _, name := range proxyVars {
		s.echo(fmt.Sprintf("  %-12s%s", name, proxy))
	}
	for _, name := range noProxyVars {
		s.echo(fmt.Sprintf("  %-12s%s", name, opts.NoProxy))
	}
	s.echo("")
	s.echo("🔑 git config set:")
	for _, key := range gitKeys {
		s.echo("  " + key + "=" + proxy)
	}
	return s.writeTo(w)
}

// WriteUnset writes the snippet clearing every proxy variable and git key.
func WriteUnset(w io.Writer) error {
	all := append(append([]string{}, proxyVars...), noProxyVars...)
	s := &script{}

	s.echo("🔧 clearing proxy...")
	s.add("unset %s", strings.Join(all, " "))
	for _, key := range gitKeys {
		s.add("git config --global --unset %s 2>/dev/null || true", key)
	}

	s.echo("")
	s.echo("🔑 environment cleared:")
	for _, name := range all {
		s.echo("  " + name)
	}
	s.echo("")
	s.echo("🔑 git config removed:")
	for _, key := range gitKeys {
		s.echo("  " + key)
	}
	return s.writeTo(w)
}
