package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned by Create for names that match neither a built-in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// RandomSceneSeed fixes the layout of the built-in random scene
const RandomSceneSeed = 42

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by Create
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the JSON file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// BuiltinScenes returns the scenes compiled into the binary
func BuiltinScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          "default",
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Diffuse sphere on a diffuse ground sphere under a sky gradient",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "materials",
			Name:        "Materials",
			DisplayName: "Materials",
			Description: "Diffuse, glass and metal spheres side by side",
			Group:       builtinGroup,
			Type:        "builtin",
		},
		{
			ID:          "random",
			Name:        "Random Spheres",
			DisplayName: "Random Spheres",
			Description: "Field of random small spheres with depth of field",
			Group:       builtinGroup,
			Type:        "builtin",
		},
	}
}

// ListJSONScenes scans dir for *.json scene descriptions. A missing directory yields no scenes.
func ListJSONScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			log.Printf("Warning: failed to parse metadata for %s: %v", filePath, err)
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group of a JSON scene file.
// Missing fields fall back to values derived from the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        "json",
		FilePath:    filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return sceneInfo, err
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return sceneInfo, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}

	if meta.Name != "" {
		sceneInfo.Name = meta.Name
		sceneInfo.DisplayName = meta.Name
	}
	if meta.Group != "" {
		sceneInfo.Group = meta.Group
	}
	sceneInfo.Description = meta.Description

	return sceneInfo, nil
}

// ListScenes returns built-in scenes and the scene files in dir, grouped by category
func ListScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListJSONScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(BuiltinScenes(), fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// Create builds a scene by id: a built-in name, or the base name of a JSON file in dir
func Create(id, dir string) (*Scene, error) {
	switch id {
	case "default", "basic", "":
		return NewDefaultScene(), nil
	case "materials":
		return NewMaterialsScene()
	case "random":
		return NewRandomScene(RandomSceneSeed)
	}

	// Only plain names resolve to files inside dir
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	path := filepath.Join(dir, id+".json")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return LoadFile(path)
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
