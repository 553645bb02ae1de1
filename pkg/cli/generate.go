package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/compiler"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/rosmsg"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// generateOptions are the resolved inputs for one generation run.
type generateOptions struct {
	ConfigPath  string
	ProtoPath   string
	CMakePath   string
	CMakeTarget string
	IncludePath string
	MsgPaths    []string
}

func newGenerateCommand() *Command {
	cmd := &Command{
		Name:        "generate",
		Description: "Generate the protobuf schema, nanopb options and bridge sources",
		Flags:       flag.NewFlagSet("generate", flag.ExitOnError),
	}

	include := cmd.Flags.String("include", compiler.DefaultIncludePath,
		"Include path for the handwritten bridge header")
	var msgPaths stringList
	cmd.Flags.Var(&msgPaths, "msg-path", "Root directory to resolve ROS messages from (repeatable)")

	cmd.Flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: protobridge generate [flags] <config> <proto_out> <cmake_out> <cmake_target>\n")
		fmt.Fprintf(os.Stderr, "\tconfig: The input YAML configuration file\n")
		fmt.Fprintf(os.Stderr, "\tproto_out: The output protobuf file path. Must end in .proto - Will also write a .options file\n")
		fmt.Fprintf(os.Stderr, "\tcmake_out: The output for the generated cmake file to include the required packages\n")
		fmt.Fprintf(os.Stderr, "\tcmake_target: The name for the target to set the dependencies in cmake_out\n")
		cmd.Flags.PrintDefaults()
	}

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		opts, err := resolveOptions(cmd.Flags.Args(), *include, msgPaths)
		if err != nil {
			cmd.Flags.Usage()
			return err
		}
		return runGenerate(newLogger(), opts)
	}
	return cmd
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	return log
}

func resolveOptions(args []string, include string, msgPaths []string) (generateOptions, error) {
	if len(args) != 4 {
		return generateOptions{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}
	opts := generateOptions{
		ConfigPath:  args[0],
		ProtoPath:   args[1],
		CMakePath:   args[2],
		CMakeTarget: args[3],
		IncludePath: include,
		MsgPaths:    msgPaths,
	}
	if filepath.Ext(opts.ProtoPath) != ".proto" {
		return generateOptions{}, fmt.Errorf("proto output %q must end in .proto", opts.ProtoPath)
	}
	if len(opts.MsgPaths) == 0 {
		opts.MsgPaths = []string{"."}
	}
	return opts, nil
}

// runGenerate performs one full generation: load, compile, verify, then
// write every artifact. Nothing is written until the schema verifies, so a
// failing run leaves no partial artifact set behind.
func runGenerate(log *logrus.Logger, opts generateOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	provider := rosmsg.NewDirProvider(opts.MsgPaths...)
	gen, err := compiler.New(cfg, provider, log, opts.IncludePath)
	if err != nil {
		return err
	}
	for i := range cfg.Topics {
		if err := gen.AddTopic(&cfg.Topics[i]); err != nil {
			return err
		}
	}
	for i := range cfg.Parameters {
		if err := gen.AddParameter(&cfg.Parameters[i]); err != nil {
			return err
		}
	}

	if err := gen.Verify(context.Background()); err != nil {
		return err
	}

	optionsPath := strings.TrimSuffix(opts.ProtoPath, ".proto") + ".options"
	cmakeDir := filepath.Dir(opts.CMakePath)

	if err := writeArtifact(opts.ProtoPath, gen.WriteProto); err != nil {
		return err
	}
	if err := writeArtifact(optionsPath, gen.WriteOptions); err != nil {
		return err
	}
	if err := writeArtifact(opts.CMakePath, func(w io.Writer) error {
		return gen.WriteCMake(w, opts.CMakeTarget)
	}); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(cmakeDir, compiler.TopicHandlerSource), gen.WriteTopicHandler); err != nil {
		return err
	}
	return writeArtifact(filepath.Join(cmakeDir, compiler.ParamHandlerSource), gen.WriteParamHandler)
}

func writeArtifact(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
