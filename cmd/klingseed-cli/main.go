// klingseed-cli generates BIP-39 mnemonics and derives master keys, either
// in-process or through a running klingseedd.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/klingseed/config"
	"github.com/Klingon-tech/klingseed/internal/keyfile"
	klog "github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/internal/rpc"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
	"golang.org/x/term"
)

// globals holds flags that appear before the subcommand.
type globals struct {
	rpcURL      string
	dataDir     string
	wordlistDir string
	logLevel    string
}

// parseGlobals scans leading --flag value / --flag=value pairs and returns
// the remaining arguments starting at the subcommand.
func parseGlobals(args []string) (globals, []string, error) {
	g := globals{dataDir: config.DefaultDataDir(), logLevel: "warn"}
	targets := map[string]*string{
		"--rpc":          &g.rpcURL,
		"--datadir":      &g.dataDir,
		"--wordlist-dir": &g.wordlistDir,
		"--log-level":    &g.logLevel,
	}
	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		name, value, hasValue := strings.Cut(args[0], "=")
		target, ok := targets[name]
		if !ok {
			break
		}
		if !hasValue {
			if len(args) < 2 {
				return g, nil, fmt.Errorf("flag %s needs a value", name)
			}
			value = args[1]
			args = args[1:]
		}
		*target = value
		args = args[1:]
	}
	return g, args, nil
}

func main() {
	g, args, err := parseGlobals(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	klog.Init(g.logLevel, false, "")

	var b backend
	if g.rpcURL != "" {
		b = newRemoteBackend(g.rpcURL)
	} else {
		provisionLocal(g)
		b = newLocalBackend()
	}

	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "generate":
		cmdGenerate(b, cmdArgs)
	case "validate":
		cmdValidate(b, cmdArgs)
	case "derive":
		cmdDerive(b, cmdArgs, g)
	case "inspect":
		cmdInspect(b, cmdArgs)
	case "search":
		cmdSearch(b, cmdArgs)
	case "languages":
		cmdLanguages(b)
	case "version", "--version":
		fmt.Println("klingseed-cli version " + config.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: klingseed-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>            Use a klingseedd endpoint (e.g. http://127.0.0.1:8555)
                         instead of running locally
  --datadir <path>       Data directory (default: ~/.klingseed)
  --wordlist-dir <path>  Extra wordlists for local mode (default: <datadir>/wordlists)
  --log-level <level>    Log level for local mode (default: warn)

Commands:
  generate [--words 12] [--lang english]
                         Generate a new mnemonic
  validate "<mnemonic>"  Check a mnemonic and detect its language
  derive [--mnemonic "..."] [--no-passphrase] [--out <file|name>]
                         Derive the master key (prompts for hidden input);
                         --out seals it into a password-protected key file
  inspect <key> | --file <path>
                         Show public key and fingerprint of a master key
  search <query> [--lang english] [--max 10]
                         Find wordlist entries close to a query
  languages              List supported languages
`)
}

// provisionLocal installs extra wordlists for in-process commands.
func provisionLocal(g globals) {
	dir := g.wordlistDir
	if dir == "" {
		dir = filepath.Join(g.dataDir, "wordlists")
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if _, err := wordlist.LoadDir(dir); err != nil {
		fatal("load wordlists: %v", err)
	}
}

// ── generate ────────────────────────────────────────────────────────────

func cmdGenerate(b backend, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	words := fs.Int("words", 12, "Word count (12, 15, 18, 21, 24)")
	lang := fs.String("lang", string(wordlist.English), "Wordlist language")
	fs.Parse(args)

	mnemonic, err := b.Generate(*words, *lang)
	if err != nil {
		fatal("generate: %v", err)
	}
	fmt.Println(mnemonic)
}

// ── validate ────────────────────────────────────────────────────────────

func cmdValidate(b backend, args []string) {
	mnemonic := strings.Join(args, " ")
	if strings.TrimSpace(mnemonic) == "" {
		fatal("Usage: klingseed-cli validate \"word1 word2 ...\"")
	}

	result, err := b.Validate(mnemonic)
	if err != nil {
		fatal("validate: %v", err)
	}
	if !result.Valid {
		fmt.Printf("Invalid mnemonic (%d words)\n", result.WordCount)
		os.Exit(2)
	}
	fmt.Printf("Valid:     yes\n")
	fmt.Printf("Language:  %s\n", result.Language)
	fmt.Printf("Words:     %d\n", result.WordCount)
}

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(b backend, args []string, g globals) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	mnemonicFlag := fs.String("mnemonic", "", "Mnemonic (prompted when omitted)")
	noPassphrase := fs.Bool("no-passphrase", false, "Use an empty passphrase without prompting")
	out := fs.String("out", "", "Write a sealed key file instead of printing the key")
	fs.Parse(args)

	mnemonic := *mnemonicFlag
	if mnemonic == "" {
		secret, err := readPassword("Enter mnemonic: ")
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		mnemonic = string(secret)
	}

	var passphrase string
	if !*noPassphrase {
		pw, err := readConfirmed("Enter passphrase (empty for none): ", "Confirm passphrase: ")
		if err != nil {
			fatal("%v", err)
		}
		passphrase = string(pw)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "Deriving master key (this takes a few seconds)...")
	start := time.Now()
	key, err := b.Derive(ctx, mnemonic, passphrase)
	if err != nil {
		fatal("derive: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Done in %s\n", time.Since(start).Round(time.Millisecond))

	if *out == "" {
		fmt.Println(key)
		return
	}

	password, err := readConfirmed("Key file password: ", "Confirm password: ")
	if err != nil {
		fatal("%v", err)
	}
	if len(password) == 0 {
		fatal("key file password must not be empty")
	}
	path := resolveKeyPath(g.dataDir, *out)
	f, err := keyfile.Write(path, key, password, keyfile.DefaultParams())
	if err != nil {
		fatal("write key file: %v", err)
	}
	fmt.Printf("Key file:     %s\n", path)
	fmt.Printf("Fingerprint:  %s\n", f.Fingerprint)
}

// resolveKeyPath maps a bare name onto <datadir>/keys/<name>.key; anything
// that looks like a path is used as given.
func resolveKeyPath(dataDir, out string) string {
	if strings.ContainsRune(out, os.PathSeparator) || strings.ContainsRune(out, '/') || filepath.Ext(out) != "" {
		return out
	}
	return filepath.Join(dataDir, "keys", out+keyfile.Extension)
}

// ── inspect ─────────────────────────────────────────────────────────────

func cmdInspect(b backend, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	file := fs.String("file", "", "Sealed key file")
	fs.Parse(args)

	var key string
	switch {
	case *file != "":
		info, err := keyfile.ReadInfo(*file)
		if err != nil {
			fatal("read key file: %v", err)
		}
		fmt.Printf("Created:      %s\n", info.CreatedAt.Format(time.RFC3339))
		password, err := readPassword("Key file password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		key, err = keyfile.Read(*file, password)
		if err != nil {
			fatal("open key file: %v", err)
		}
	case fs.NArg() == 1:
		key = fs.Arg(0)
	default:
		fatal("Usage: klingseed-cli inspect <key> | --file <path>")
	}

	result, err := b.Inspect(key)
	if err != nil {
		fatal("inspect: %v", err)
	}
	printInspect(result)
}

func printInspect(r *rpc.InspectResult) {
	fmt.Printf("Version:      0x%02x\n", r.Version)
	fmt.Printf("Compressed:   %v\n", r.Compressed)
	fmt.Printf("Public key:   %s\n", r.PublicKey)
	fmt.Printf("Fingerprint:  %s\n", r.Fingerprint)
}

// ── search ──────────────────────────────────────────────────────────────

func cmdSearch(b backend, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	lang := fs.String("lang", string(wordlist.English), "Wordlist language")
	maxResults := fs.Int("max", rpc.DefaultMaxResults, "Maximum results")
	fs.Parse(reorderFlags(args))

	if fs.NArg() == 0 {
		fatal("Usage: klingseed-cli search <query> [--lang english] [--max 10]")
	}
	words, err := b.Search(strings.Join(fs.Args(), " "), *lang, *maxResults)
	if err != nil {
		fatal("search: %v", err)
	}
	if len(words) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, w := range words {
		fmt.Println(w)
	}
}

// reorderFlags moves flags ahead of positional arguments so that
// "search abndon --lang english" parses like "search --lang english abndon".
func reorderFlags(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		if !strings.Contains(arg, "=") && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

// ── languages ───────────────────────────────────────────────────────────

func cmdLanguages(b backend) {
	langs, err := b.Languages()
	if err != nil {
		fatal("languages: %v", err)
	}
	fmt.Printf("%-12s %-10s %s\n", "LANGUAGE", "AVAILABLE", "WORDS")
	for _, l := range langs {
		fmt.Printf("%-12s %-10v %d\n", l.Name, l.Available, l.Words)
	}
}

// ── Input helpers ───────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readConfirmed prompts twice and requires both entries to match.
func readConfirmed(prompt, confirmPrompt string) ([]byte, error) {
	first, err := readPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	second, err := readPassword(confirmPrompt)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if string(first) != string(second) {
		return nil, fmt.Errorf("entries do not match")
	}
	return first, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
