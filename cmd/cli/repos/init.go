package repos

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/dependencies"
	"github.com/temirov/repos/internal/repos/discovery"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	initUseConstant                     = "init"
	initShortDescriptionConstant        = "Generate a fleet file from local checkouts"
	initLongDescriptionConstant         = "init discovers Git checkouts beneath the root directory, derives tags from their contents and writes a fleet file listing every checkout with an origin remote. With --supplement it adds only the checkouts an existing fleet file does not list yet."
	outputFileFlagNameConstant          = "output"
	outputFileFlagShorthandConstant     = "o"
	outputFileFlagUsageConstant         = "Fleet file to write"
	overwriteFlagNameConstant           = "overwrite"
	overwriteFlagUsageConstant          = "Replace an existing fleet file"
	supplementFlagNameConstant          = "supplement"
	supplementFlagUsageConstant         = "Add newly discovered checkouts to an existing fleet file"
	overwriteFlagArgumentConstant       = "--overwrite"
	supplementFlagArgumentConstant      = "--supplement"
	rootDirectoryFlagNameConstant       = "root"
	rootDirectoryFlagUsageConstant      = "Directory searched for checkouts"
	outputExistsTemplateConstant        = "Output file '%s' already exists. Use --overwrite to replace it."
	discoveringMessageConstant          = "Discovering Git repositories...\n"
	noCheckoutsFoundMessageConstant     = "No Git repositories found in current directory\n"
	checkoutsFoundTemplateConstant      = "Found %d repositories\n"
	configurationSavedTemplateConstant  = "Configuration saved to '%s'\n"
	supplementedTemplateConstant        = "Added %d new repositories to '%s'\n"
	nothingToSupplementTemplateConstant = "No new repositories to add to '%s'\n"
	outputStatErrorTemplateConstant     = "unable to inspect output file %s: %w"
)

// InitCommandBuilder assembles the init command.
type InitCommandBuilder struct {
	LoggerProvider LoggerProvider
	GitExecutor    shared.GitExecutor
	FileSystem     shared.FileSystem
	Discoverer     shared.RepositoryDiscoverer
}

type initFlags struct {
	outputFile    string
	overwrite     bool
	supplement    bool
	rootDirectory string
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initUseConstant,
		Short: initShortDescriptionConstant,
		Long:  initLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	options := &initFlags{}
	command.Flags().StringVarP(&options.outputFile, outputFileFlagNameConstant, outputFileFlagShorthandConstant, defaultInitOutputFileConstant, outputFileFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &options.overwrite, overwriteFlagNameConstant, "", false, overwriteFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &options.supplement, supplementFlagNameConstant, "", false, supplementFlagUsageConstant)
	command.Flags().StringVar(&options.rootDirectory, rootDirectoryFlagNameConstant, defaultInitRootDirectoryConstant, rootDirectoryFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, options)
	}
	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, options *initFlags) error {
	if options.overwrite && options.supplement {
		return CommandValidationError{Kind: ValidationKindMutualExclusivity, Argument: overwriteFlagArgumentConstant, Other: supplementFlagArgumentConstant}
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	outputFile := repositoryHomeDirectoryExpander.Expand(options.outputFile)
	outputExists := false
	if !options.overwrite {
		_, statError := fileSystem.Stat(outputFile)
		switch {
		case statError == nil:
			outputExists = true
		case !errors.Is(statError, fs.ErrNotExist):
			return fmt.Errorf(outputStatErrorTemplateConstant, outputFile, statError)
		}
	}
	if outputExists && !options.supplement {
		return fmt.Errorf(outputExistsTemplateConstant, outputFile)
	}

	logger := resolveLogger(builder.LoggerProvider)
	repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitExecutor, fileSystem, logger)
	if managerError != nil {
		return managerError
	}
	inspector, inspectorError := discovery.NewRepositoryInspector(dependencies.ResolveRepositoryDiscoverer(builder.Discoverer), repositoryManager, fileSystem)
	if inspectorError != nil {
		return inspectorError
	}

	reporter := commandReporter(command)
	reporter.Printf(discoveringMessageConstant)
	records, inventoryError := inspector.Inventory(command.Context(), repositoryHomeDirectoryExpander.Expand(options.rootDirectory))
	if inventoryError != nil {
		return inventoryError
	}
	if len(records) == 0 {
		reporter.Printf(noCheckoutsFoundMessageConstant)
		return nil
	}
	reporter.Printf(checkoutsFoundTemplateConstant, len(records))

	if outputExists {
		return supplementFleetFile(reporter, outputFile, records)
	}

	configuration := fleet.Configuration{Repositories: records}
	if saveError := configuration.Save(outputFile); saveError != nil {
		return saveError
	}
	reporter.Printf(configurationSavedTemplateConstant, outputFile)
	return nil
}

// supplementFleetFile appends records whose names the existing fleet file does not list yet.
// Existing entries and recipes are kept as written.
func supplementFleetFile(reporter shared.Reporter, outputFile string, records []fleet.RepositoryRecord) error {
	configuration, loadError := fleet.LoadConfiguration(outputFile)
	if loadError != nil {
		return loadError
	}

	addedCount := 0
	for _, record := range records {
		if _, exists := configuration.FindRepository(record.Name); exists {
			continue
		}
		if addError := configuration.AddRepository(record); addError != nil {
			return addError
		}
		addedCount++
	}
	if addedCount == 0 {
		reporter.Printf(nothingToSupplementTemplateConstant, outputFile)
		return nil
	}

	if saveError := configuration.Save(outputFile); saveError != nil {
		return saveError
	}
	reporter.Printf(supplementedTemplateConstant, addedCount, outputFile)
	return nil
}
