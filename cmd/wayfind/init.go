package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/wayfind/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a Wayfind project",
	Long: `Initialize a directory for use with Wayfind.

This command sets up everything needed to run Wayfind:
  - Creates the .wayfind directory (session signals live here)
  - Creates a .wayfind.yaml starter config with the defaults spelled out
  - Reports whether the required API keys are set

The directory argument is optional and defaults to the current directory.

Examples:
  wayfind init              # Initialize current directory
  wayfind init ./myproject  # Initialize specific directory
  wayfind init --force      # Overwrite an existing .wayfind.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing .wayfind.yaml")
}

// starterConfig is what init writes as .wayfind.yaml. It mirrors the
// built-in defaults so users can see what is tunable.
type starterConfig struct {
	Anthropic struct {
		Model         string `yaml:"model"`
		UseAWSBedrock bool   `yaml:"use_aws_bedrock"`
	} `yaml:"anthropic"`
	Agent struct {
		LoopBudget  int     `yaml:"loop_budget"`
		Language    string  `yaml:"language"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"agent"`
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing Wayfind in %s...\n\n", absPath)

	signalsDir := filepath.Join(absPath, ".wayfind", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return fmt.Errorf("creating .wayfind directory: %w", err)
	}
	printStatus("✓", "Created .wayfind directory structure", color.FgGreen)

	configPath := filepath.Join(absPath, ".wayfind.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		printStatus("⚠", ".wayfind.yaml already exists (use --force to overwrite)", color.FgYellow)
	} else {
		if err := writeStarterConfig(configPath); err != nil {
			return fmt.Errorf("writing starter config: %w", err)
		}
		printStatus("✓", "Created .wayfind.yaml starter config", color.FgGreen)
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}
	if os.Getenv("SERPER_API_KEY") == "" {
		printStatus("⚠", "SERPER_API_KEY not set (web search disabled)", color.FgYellow)
	} else {
		printStatus("✓", "SERPER_API_KEY is set", color.FgGreen)
	}

	fmt.Printf("\n%s Wayfind initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Run Wayfind:")
	fmt.Println("     wayfind run \"your goal here\"")
	fmt.Println()
	fmt.Println("  3. Learn more:")
	fmt.Println("     wayfind --help")

	return nil
}

// writeStarterConfig writes a .wayfind.yaml spelled out with defaults.
func writeStarterConfig(path string) error {
	var sc starterConfig
	sc.Anthropic.Model = config.DefaultModel
	sc.Agent.LoopBudget = config.DefaultLoopBudget
	sc.Agent.Language = config.DefaultLanguage
	sc.Agent.Temperature = config.DefaultTemperature
	sc.Agent.MaxTokens = config.DefaultMaxTokens

	data, err := yaml.Marshal(&sc)
	if err != nil {
		return err
	}

	header := []byte("# Wayfind project configuration.\n# Values here override ~/.config/wayfind/config.yaml.\n")
	return os.WriteFile(path, append(header, data...), 0644)
}

// printStatus prints a colored status line.
func printStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
