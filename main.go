package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tonecraft/config"
	"tonecraft/midiexport"
	"tonecraft/model"
	"tonecraft/orchestrator"
)

// seedOverride, when non-zero, takes precedence over both the project
// file's own seed and the config-resolved default (can be set via --seed).
var seedOverride int64

func main() {
	args := parseArgs(os.Args[1:])

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]

	switch command {
	case "generate":
		if len(args) < 2 {
			fmt.Println("Error: generate requires a project YAML file")
			printUsage()
			os.Exit(1)
		}
		outputPath := ""
		if len(args) >= 3 {
			outputPath = args[2]
		}
		generateProject(args[1], outputPath)
	case "export":
		if len(args) < 3 {
			fmt.Println("Error: export requires a project YAML file and an output path")
			printUsage()
			os.Exit(1)
		}
		generateProject(args[1], args[2])
	default:
		printUsage()
		os.Exit(1)
	}
}

// parseArgs extracts flags and returns remaining positional args, mirroring
// the teacher's flag-plus-env-fallback idiom for --soundfont.
func parseArgs(args []string) []string {
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--seed" || arg == "-s" {
			if i+1 < len(args) {
				seedOverride = parseSeedArg(args[i+1])
				i++
			} else {
				fmt.Println("Error: --seed requires a value")
				os.Exit(1)
			}
		} else if strings.HasPrefix(arg, "--seed=") {
			seedOverride = parseSeedArg(strings.TrimPrefix(arg, "--seed="))
		} else if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		} else {
			remaining = append(remaining, arg)
		}
	}

	return remaining
}

func parseSeedArg(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Printf("Error: invalid --seed value %q\n", s)
		os.Exit(1)
	}
	return n
}

func generateProject(projectPath, outputPath string) {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	def, err := config.LoadProjectDefinition(projectPath)
	if err != nil {
		fmt.Printf("Error loading project: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.DefaultSeed
	if seedOverride != 0 {
		seed = seedOverride
	}

	if def.Project.BPM == 0 {
		def.Project.BPM = cfg.DefaultBPM
	}

	project, err := def.ToProject(seed)
	if err != nil {
		fmt.Printf("Error building project: %v\n", err)
		os.Exit(1)
	}
	if seedOverride != 0 {
		project.Seed = seedOverride
	}
	logger.Info("loaded project", "name", project.Name, "bars", project.Bars, "seed", project.Seed)

	exportTracks := make([]midiexport.ExportTrack, 0, len(def.Tracks))
	for _, trackSpec := range def.Tracks {
		track, err := trackSpec.ToTrack(project.ID)
		if err != nil {
			fmt.Printf("Error building track %q: %v\n", trackSpec.Name, err)
			os.Exit(1)
		}

		et := midiexport.ExportTrack{Track: track}
		for _, clipSpec := range trackSpec.Clips {
			seed := orchestrator.SegmentSeed(project.Seed, project.ID, clipSpec.StartBar, clipSpec.SegmentKind())

			if clipSpec.SegmentKind() == orchestrator.KindChords && clipSpec.NumCandidates() > 0 {
				result, run, err := orchestrator.GenerateChordsCandidates(project, track, clipSpec.StartBar, clipSpec.LengthBars, seed, clipSpec.ChordsParams(project.KeyTonic, project.Mode, project.BPM), project.ID, clipSpec.NumCandidates(), false)
				if err != nil {
					fmt.Printf("Error scoring chord candidates for track %q: %v\n", trackSpec.Name, err)
					os.Exit(1)
				}
				et.Clips = append(et.Clips, midiexport.ExportClip{Clip: result.Clip, Notes: result.Notes})
				logger.Info("generated clip", "track", track.Name, "seed", orchestrator.DescribeSeed(clipSpec.SegmentKind(), seed),
					"notes", len(result.Notes), "candidates_considered", run.CandidatesConsidered, "chosen_candidate_index", *run.ChosenCandidateIndex)
				continue
			}

			result := generateClip(project, track, clipSpec, seed)
			et.Clips = append(et.Clips, midiexport.ExportClip{Clip: result.Clip, Notes: result.Notes})
			logger.Info("generated clip", "track", track.Name, "seed", orchestrator.DescribeSeed(clipSpec.SegmentKind(), seed), "notes", len(result.Notes))
		}
		exportTracks = append(exportTracks, et)
	}

	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, sanitizedProjectFilename(project.Name)+".zip")
	}

	if strings.HasSuffix(outputPath, ".zip") {
		splitBy := midiexport.SplitByTrack
		data, err := midiexport.ExportProjectToZIP(project, exportTracks, splitBy)
		if err != nil {
			fmt.Printf("Error exporting ZIP: %v\n", err)
			os.Exit(1)
		}
		writeOutput(outputPath, data)
		return
	}

	data, err := midiexport.ExportProjectToMIDI(project, exportTracks)
	if err != nil {
		fmt.Printf("Error exporting MIDI: %v\n", err)
		os.Exit(1)
	}
	writeOutput(outputPath, data)
}

func generateClip(project model.Project, track model.Track, clip config.ClipSpec, seed int64) orchestrator.SegmentResult {
	switch clip.SegmentKind() {
	case orchestrator.KindBeats:
		return orchestrator.GenerateBeatsSegment(project, track, clip.StartBar, clip.LengthBars, seed, clip.BeatsParams(), false)
	case orchestrator.KindChords:
		return orchestrator.GenerateChordsSegment(project, track, clip.StartBar, clip.LengthBars, seed, clip.ChordsParams(project.KeyTonic, project.Mode, project.BPM), false)
	case orchestrator.KindBass:
		return orchestrator.GenerateBassSegment(project, track, clip.StartBar, clip.LengthBars, seed, clip.BassParams(), false)
	case orchestrator.KindMelody:
		return orchestrator.GenerateMelodySegment(project, track, clip.StartBar, clip.LengthBars, seed, clip.MelodyParams(), false)
	default:
		fmt.Printf("Error: unknown clip kind %q\n", clip.Kind)
		os.Exit(1)
		return orchestrator.SegmentResult{}
	}
}

func sanitizedProjectFilename(name string) string {
	if name == "" {
		return "untitled"
	}
	return midiexport.SanitizeFilename(name)
}

func writeOutput(path string, data []byte) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n✓ Exported to: %s\n", path)
}

func printUsage() {
	fmt.Println("Tonecraft — deterministic generative MIDI engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tonecraft generate <project.yaml> [output]   Generate and export (.mid or .zip)")
	fmt.Println("  tonecraft export <project.yaml> <output>     Generate and export to an explicit path")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --seed, -s <n>            Override the project's base seed")
	fmt.Println("  --help, -h                Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  TONECRAFT_SEED            Default base seed")
	fmt.Println("  TONECRAFT_BPM             Default bpm (unused when the project file sets one)")
	fmt.Println("  TONECRAFT_OUTPUT_DIR      Default output directory when no output path is given")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tonecraft generate examples/demo.yaml")
	fmt.Println("  tonecraft generate examples/demo.yaml out.mid")
	fmt.Println("  tonecraft export examples/demo.yaml out.zip --seed 7")
}
