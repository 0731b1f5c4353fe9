package graphics

const chunkVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 proj;
uniform mat4 view;
uniform vec3 origin;

out vec2 vUV;
out float vDepth;

void main() {
	vec4 viewPos = view * vec4(aPos + origin, 1.0);
	gl_Position = proj * viewPos;
	vUV = aUV;
	vDepth = -viewPos.z;
}
`

const chunkFragmentShader = `#version 410 core
in vec2 vUV;
in float vDepth;

uniform sampler2D atlas;
uniform vec3 fogColor;
uniform float fogEnd;

out vec4 FragColor;

void main() {
	vec4 c = texture(atlas, vUV);
	float fog = clamp(vDepth / fogEnd, 0.0, 1.0);
	FragColor = vec4(mix(c.rgb, fogColor, fog * fog), 1.0);
}
`
