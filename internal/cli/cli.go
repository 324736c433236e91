// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/explorer-exclude/internal/config"
	"github.com/temirov/explorer-exclude/internal/reconcile"
	"github.com/temirov/explorer-exclude/internal/scheduler"
	"github.com/temirov/explorer-exclude/internal/settings"
	"github.com/temirov/explorer-exclude/internal/utils"
)

const (
	configFlagName       = "config"
	userSettingsFlagName = "user-settings"
	editionFlagName      = "edition"
	verboseFlagName      = "verbose"
	versionFlagName      = "version"
	intervalFlagName     = "interval"
	watchFlagName        = "watch"
	noSyncFlagName       = "no-sync"
	copyFlagName         = "copy"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "explorer-exclude version: %s\n"
	rootUse              = "explorer-exclude"
	rootShortDescription = "explorer-exclude command line interface"
	rootLongDescription  = `explorer-exclude keeps the editor's files.exclude setting in step with .gitignore.
Patterns listed in the user settings (explorerExcludedFiles.patterns) are resolved for every
workspace folder and written into <folder>/.vscode/settings.json, tagged so they can be removed again.
Use show and hide to reveal or conceal the excluded files, and run to keep folders in sync.`

	runUse                = "run [folders...]"
	syncUse               = "sync [folders...]"
	clearUse              = "clear [folders...]"
	showUse               = "show [folders...]"
	hideUse               = "hide [folders...]"
	listUse               = "list [folders...]"
	initUse               = "init"
	runAlias              = "r"
	syncAlias             = "s"
	listAlias             = "ls"
	runShortDescription   = "keep folders in sync until interrupted (" + runAlias + ")"
	syncShortDescription  = "reconcile folders once (" + syncAlias + ")"
	clearShortDescription = "remove every exclude entry written by explorer-exclude"
	showShortDescription  = "reveal excluded files"
	hideShortDescription  = "hide excluded files"
	listShortDescription  = "list exclude entries and the paths they match (" + listAlias + ")"
	initShortDescription  = "write the default configuration file"

	// runLongDescription provides detailed help for the run command.
	runLongDescription = `Reconcile every folder immediately and again after each interval.
When the local configuration file lists the folders, edits to it are picked up while running:
folders removed from the list are cleared. On interrupt every folder is cleared before exit.`
	// runUsageExample demonstrates run command usage.
	runUsageExample = `  # Keep the current project in sync
  explorer-exclude run

  # Watch two projects and react to .gitignore edits immediately
  explorer-exclude run --watch ~/src/api ~/src/web`

	// syncUsageExample demonstrates sync command usage.
	syncUsageExample = `  # Apply .gitignore to the current project once
  explorer-exclude sync`

	// showUsageExample demonstrates show command usage.
	showUsageExample = `  # Reveal excluded files in the current project
  explorer-exclude show

  # Only flip the flag and leave reconciliation to a running daemon
  explorer-exclude show --no-sync`

	// listUsageExample demonstrates list command usage.
	listUsageExample = `  # Show exclude entries and copy the report
  explorer-exclude list --copy`

	verboseFlagDescription      = "enable debug logging"
	versionFlagDescription      = "display application version"
	configFlagDescription       = "configuration file (default " + utils.LocalConfigFileName + ")"
	userSettingsFlagDescription = "path of the editor's user settings.json"
	editionFlagDescription      = "editor edition: stable, insiders, oss, or vscodium"
	intervalFlagDescription     = "delay between reconciliation cycles"
	watchFlagDescription        = "reconcile early when folder contents change"
	noSyncFlagDescription       = "only toggle the flag, do not reconcile"
	copyFlagDescription         = "copy the report to the clipboard"
	globalFlagDescription       = "write the global configuration instead of the local one"
	forceFlagDescription        = "overwrite an existing configuration file"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	userSettingsWarning         = "user settings unavailable; default patterns apply"
	configurationReloadWarning  = "reload configuration failed"
)

// rootOptions stores values of the persistent flags.
type rootOptions struct {
	configPath       string
	userSettingsPath string
	edition          string
	verbose          bool
	showVersion      bool
}

// application carries the collaborators shared by every command.
type application struct {
	logger  *zap.Logger
	level   zap.AtomicLevel
	copier  Copier
	options rootOptions
}

// environment is the resolved state a command operates on.
type environment struct {
	loadOptions   config.LoadOptions
	configuration config.ApplicationConfiguration
	folders       []string
	reconciler    *reconcile.Reconciler
}

// Execute runs the explorer-exclude application.
func Execute(logger *zap.Logger, level zap.AtomicLevel) error {
	rootCommand := createRootCommand(&application{logger: logger, level: level, copier: NewSystemClipboard()})
	return rootCommand.ExecuteContext(context.Background())
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if app.options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if app.options.verbose {
				app.level.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.BoolVar(&app.options.showVersion, versionFlagName, false, versionFlagDescription)
	persistentFlags.BoolVarP(&app.options.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	persistentFlags.StringVar(&app.options.configPath, configFlagName, "", configFlagDescription)
	persistentFlags.StringVar(&app.options.userSettingsPath, userSettingsFlagName, "", userSettingsFlagDescription)
	persistentFlags.StringVar(&app.options.edition, editionFlagName, "", editionFlagDescription)
	rootCommand.AddCommand(
		createRunCommand(app),
		createSyncCommand(app),
		createClearCommand(app),
		createToggleCommand(app, true),
		createToggleCommand(app, false),
		createListCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createRunCommand returns the run subcommand.
func createRunCommand(app *application) *cobra.Command {
	var interval = scheduler.DefaultInterval
	var watchEnabled bool

	runCommand := &cobra.Command{
		Use:     runUse,
		Aliases: []string{runAlias},
		Short:   runShortDescription,
		Long:    runLongDescription,
		Example: runUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, prepareError := app.prepare(arguments)
			if prepareError != nil {
				return prepareError
			}
			if !command.Flags().Changed(intervalFlagName) && env.configuration.Interval > 0 {
				interval = env.configuration.Interval
			}
			if !command.Flags().Changed(watchFlagName) {
				watchEnabled = env.configuration.WatchEnabled()
			}

			ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			folderScheduler := scheduler.New(scheduler.Options{
				Reconciler: env.reconciler,
				Folders:    env.folders,
				Interval:   interval,
				Watch:      watchEnabled,
				Logger:     app.logger,
			})
			if len(arguments) == 0 {
				app.watchFolderSet(env, folderScheduler)
			}
			app.logger.Info("reconciling folders", zap.Strings("folders", env.folders), zap.Duration("interval", interval))
			return folderScheduler.Run(ctx)
		},
	}
	runCommand.Flags().DurationVar(&interval, intervalFlagName, scheduler.DefaultInterval, intervalFlagDescription)
	runCommand.Flags().BoolVar(&watchEnabled, watchFlagName, false, watchFlagDescription)
	return runCommand
}

// createSyncCommand returns the sync subcommand.
func createSyncCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:     syncUse,
		Aliases: []string{syncAlias},
		Short:   syncShortDescription,
		Example: syncUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, prepareError := app.prepare(arguments)
			if prepareError != nil {
				return prepareError
			}
			return runSync(command.Context(), command.OutOrStdout(), env)
		},
	}
}

// createClearCommand returns the clear subcommand.
func createClearCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   clearUse,
		Short: clearShortDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, prepareError := app.prepare(arguments)
			if prepareError != nil {
				return prepareError
			}
			var clearErrors []error
			for _, folder := range env.folders {
				outcome, clearError := env.reconciler.Clear(folder)
				if clearError != nil {
					clearErrors = append(clearErrors, fmt.Errorf("clear %s: %w", folder, clearError))
					continue
				}
				printOutcome(command.OutOrStdout(), folder, outcome)
			}
			return errors.Join(clearErrors...)
		},
	}
}

// createToggleCommand returns the show or hide subcommand.
func createToggleCommand(app *application, show bool) *cobra.Command {
	var skipSync bool
	use, short, example := hideUse, hideShortDescription, ""
	if show {
		use, short, example = showUse, showShortDescription, showUsageExample
	}

	toggleCommand := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, prepareError := app.prepare(arguments)
			if prepareError != nil {
				return prepareError
			}
			var toggleErrors []error
			for _, folder := range env.folders {
				if _, toggleError := env.reconciler.Toggle(folder, show); toggleError != nil {
					toggleErrors = append(toggleErrors, fmt.Errorf("toggle %s: %w", folder, toggleError))
				}
			}
			if len(toggleErrors) > 0 || skipSync {
				return errors.Join(toggleErrors...)
			}
			return runSync(command.Context(), command.OutOrStdout(), env)
		},
	}
	toggleCommand.Flags().BoolVar(&skipSync, noSyncFlagName, false, noSyncFlagDescription)
	return toggleCommand
}

// createListCommand returns the list subcommand.
func createListCommand(app *application) *cobra.Command {
	var copyEnabled bool

	listCommand := &cobra.Command{
		Use:     listUse,
		Aliases: []string{listAlias},
		Short:   listShortDescription,
		Example: listUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, prepareError := app.prepare(arguments)
			if prepareError != nil {
				return prepareError
			}
			report, reportError := renderExcludeReport(env.folders)
			if reportError != nil {
				return reportError
			}
			fmt.Fprint(command.OutOrStdout(), report)
			if copyEnabled {
				if copyError := app.copier.Copy(report); copyError != nil {
					return fmt.Errorf("copy report to clipboard: %w", copyError)
				}
			}
			return nil
		},
	}
	listCommand.Flags().BoolVar(&copyEnabled, copyFlagName, false, copyFlagDescription)
	return listCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var globalTarget bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintln(command.OutOrStdout(), writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&globalTarget, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// prepare loads configuration and resolves the folders and user settings a command works with.
func (app *application) prepare(arguments []string) (environment, error) {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return environment{}, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	loadOptions := config.LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: app.options.configPath}
	configuration, loadError := config.LoadApplicationConfiguration(loadOptions)
	if loadError != nil {
		return environment{}, loadError
	}
	if !app.options.verbose && configuration.Log.Level != "" {
		app.level.SetLevel(utils.ParseLogLevel(configuration.Log.Level))
	}

	userSettingsPath, pathError := app.resolveUserSettingsPath(configuration)
	if pathError != nil {
		return environment{}, pathError
	}
	return environment{
		loadOptions:   loadOptions,
		configuration: configuration,
		folders:       resolveFolders(arguments, configuration.Folders, workingDirectory),
		reconciler: reconcile.New(reconcile.Options{
			UserSettingsPath: userSettingsPath,
			DefaultPatterns:  configuration.Patterns,
			Logger:           app.logger,
		}),
	}, nil
}

// resolveUserSettingsPath prefers the flag, then the configuration, then the edition's standard location.
func (app *application) resolveUserSettingsPath(configuration config.ApplicationConfiguration) (string, error) {
	if app.options.userSettingsPath != "" {
		return app.options.userSettingsPath, nil
	}
	if configuration.Editor.UserSettings != "" {
		return configuration.Editor.UserSettings, nil
	}
	editionName := configuration.Editor.Edition
	if app.options.edition != "" {
		editionName = app.options.edition
	}
	edition, editionError := settings.ParseEdition(editionName)
	if editionError != nil {
		return "", editionError
	}
	userSettingsPath, locateError := settings.UserSettingsPath(edition)
	if locateError != nil {
		app.logger.Warn(userSettingsWarning, zap.Error(locateError))
		return "", nil
	}
	return userSettingsPath, nil
}

// watchFolderSet feeds folder lists from the local configuration file to the scheduler.
func (app *application) watchFolderSet(env environment, folderScheduler *scheduler.Scheduler) {
	localPath := config.ResolveLocalConfigPath(env.loadOptions.WorkingDirectory, env.loadOptions.ExplicitFilePath)
	if _, statError := os.Stat(localPath); statError != nil {
		return
	}
	watchError := config.WatchConfigurationFile(localPath, env.loadOptions, func(configuration config.ApplicationConfiguration, loadError error) {
		if loadError != nil {
			app.logger.Warn(configurationReloadWarning, zap.Error(loadError))
			return
		}
		folders := resolveFolders(nil, configuration.Folders, env.loadOptions.WorkingDirectory)
		app.logger.Info("folder set changed", zap.Strings("folders", folders))
		folderScheduler.SetFolders(folders)
	})
	if watchError != nil {
		app.logger.Warn(configurationReloadWarning, zap.Error(watchError))
	}
}

// resolveFolders picks positional arguments, then configured folders, then the working directory.
func resolveFolders(arguments []string, configuredFolders []string, workingDirectory string) []string {
	if len(arguments) > 0 {
		return utils.NormalizeFolders(arguments)
	}
	if len(configuredFolders) > 0 {
		return utils.NormalizeFolders(configuredFolders)
	}
	return utils.NormalizeFolders([]string{workingDirectory})
}

func runSync(ctx context.Context, output io.Writer, env environment) error {
	report, cycleError := env.reconciler.Cycle(ctx, env.folders)
	if cycleError != nil {
		return cycleError
	}
	for _, result := range report.Folders {
		if result.Err == nil {
			printOutcome(output, result.Folder, result.Outcome)
		}
	}
	return report.Err()
}

func printOutcome(output io.Writer, folder string, outcome reconcile.Outcome) {
	fmt.Fprintf(output, "%s: %s\n", folder, outcome)
}
