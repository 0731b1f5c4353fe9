package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying camera; its position is the streaming reference point.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32 // degrees, 0 looks down -Z
	Pitch       float32 // degrees
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, pos mgl32.Vec3) *Camera {
	return &Camera{
		Position:    pos,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right returns the horizontal unit vector to the camera's right.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Look rotates the camera, keeping pitch short of straight up or down.
func (c *Camera) Look(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
