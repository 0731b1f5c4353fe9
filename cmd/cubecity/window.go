package main

import (
	"cubecity/internal/config"
	"cubecity/internal/graphics"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const mouseSensitivity = 0.1

func setupWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(graphics.WinWidth, graphics.WinHeight, "cubecity", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	// Disable V-Sync; the tick loop has its own limiter
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

// controls collects input between ticks. Callbacks fire inside PollEvents on
// the main thread while the tick goroutine waits on mainthread.Call.
type controls struct {
	firstMouse     bool
	lastX, lastY   float64
	yaw, pitch     float32
	rangesChanged  bool
	generator      int
	generatorDirty bool
	place, dig     bool
	paused         bool
}

func setupInputHandlers(window *glfw.Window, c *controls) {
	c.firstMouse = true

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if c.paused {
			return
		}
		if c.firstMouse {
			c.lastX, c.lastY = xpos, ypos
			c.firstMouse = false
			return
		}
		c.yaw += float32(xpos-c.lastX) * mouseSensitivity
		c.pitch += float32(c.lastY-ypos) * mouseSensitivity
		c.lastX, c.lastY = xpos, ypos
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if c.paused || action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			c.dig = true
		case glfw.MouseButtonRight:
			c.place = true
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			c.paused = !c.paused
			if c.paused {
				w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			} else {
				w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
				c.firstMouse = true
			}
		case glfw.KeyEqual, glfw.KeyKPAdd:
			config.SetViewDistance(config.GetViewDistance() + 1)
			c.rangesChanged = true
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			config.SetViewDistance(config.GetViewDistance() - 1)
			c.rangesChanged = true
		case glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4:
			c.generator = int(key - glfw.Key1)
			c.generatorDirty = true
		}
	})
}
