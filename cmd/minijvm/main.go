package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/config"
	"github.com/daimatz/minijvm/pkg/vm"
)

var log = commonlog.GetLogger("minijvm")

// countFlag counts repetitions of a boolean flag, so -v -v raises verbosity
// twice.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: minijvm [flags] <Class.class | ClassName>\n")
	flag.PrintDefaults()
}

func main() {
	var (
		printOnly  = flag.Bool("p", false, "print the class instead of running it")
		classPath  = flag.String("cp", "", "class path directories")
		jmodFlag   = flag.String("jmod", "", "path to java.base.jmod")
		configPath = flag.String("config", "", "path to "+config.FileName)
		logFile    = flag.String("log", "", "log file (default stderr)")
		verbosity  countFlag
	)
	flag.Var(&verbosity, "v", "log verbosity (repeatable)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), options{
		printOnly:  *printOnly,
		classPath:  *classPath,
		jmod:       *jmodFlag,
		configPath: *configPath,
		logFile:    *logFile,
		verbosity:  int(verbosity),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	printOnly  bool
	classPath  string
	jmod       string
	configPath string
	logFile    string
	verbosity  int
}

func run(target string, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	verbosity := cfg.Log.Verbosity
	if opts.verbosity > 0 {
		verbosity = opts.verbosity
	}
	var logPath *string
	if opts.logFile != "" {
		logPath = &opts.logFile
	} else if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(verbosity, logPath)

	var file *classfile.ClassFile
	className := target
	dirs := cfg.Classpath.Dirs
	if opts.classPath != "" {
		dirs = filepath.SplitList(opts.classPath)
	}
	if strings.HasSuffix(target, ".class") {
		if file, err = classfile.ParseFile(target); err != nil {
			return err
		}
		className = file.Name()
		dirs = append(dirs, classRoot(target, className))
	}

	if opts.printOnly {
		if file == nil {
			return fmt.Errorf("-p needs a .class file, got %s", target)
		}
		return printClass(os.Stdout, file)
	}

	var parent vm.ClassLoader
	if jmod := findJmodPath(opts.jmod, cfg.Classpath.Jmod); jmod != "" {
		log.Infof("using %s", jmod)
		parent = vm.NewJmodClassLoader(jmod)
	} else {
		log.Warning("java.base.jmod not found, only user and built-in classes are available")
	}

	v := vm.NewVM(vm.NewDirClassLoader(dirs, parent))
	v.MaxFrameDepth = cfg.VM.MaxFrameDepth
	if file != nil {
		if _, err := v.Define(file); err != nil {
			return err
		}
	}
	if err := v.Execute(className); err != nil {
		if vm.IsClassNotFound(err) && parent == nil {
			return fmt.Errorf("%w (set -jmod or JAVA_HOME to load JDK classes)", err)
		}
		return err
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// classRoot returns the class path root of a class file, e.g. "out" for
// out/com/example/Main.class declaring com/example/Main.
func classRoot(path, className string) string {
	dir := filepath.Dir(path)
	for i := strings.Count(className, "/"); i > 0; i-- {
		dir = filepath.Dir(dir)
	}
	return dir
}

func findJmodPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
